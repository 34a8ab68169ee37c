// Command swiper serves swipe-to-trade sessions over websockets, plays one
// in the terminal, or previews the explore feed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "swiper",
	Short: "Swipe to trade Zora coins on Base",
	Long: `swiper loads a deck of coin cards from the Zora explore API and lets a
player decide on them one at a time: swipe right to buy, left to pass.

The deck refills in the background as it runs low, walking the category
sequence FEATURED, TOP_GAINERS, MOST_VALUABLE, TOP_VOLUME_24H, then paging
NEW until the feed runs dry.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, playCmd, previewCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
