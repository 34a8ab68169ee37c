package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rickgao/base-swiper/internal/feed"
	"github.com/rickgao/base-swiper/internal/model"
	"github.com/rickgao/base-swiper/internal/tui"
)

var (
	previewSteps int
	previewCards bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Load the feed and print the deck in presentation order",
	Long: `Loads the initial deck plus the given number of progressive steps and
prints it top card first, the way a player would see it.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&previewSteps, "steps", 0, "extra progressive loads after the initial deck")
	previewCmd.Flags().BoolVar(&previewCards, "cards", false, "render full cards instead of a table")
}

func runPreview(cmd *cobra.Command, args []string) error {
	a, err := loadApp(os.Stderr)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loader := feed.New(a.cfg.FeedLoaderConfig(), a.client, a.logger, feed.WithMetrics(a.metrics))

	batch, err := loader.LoadInitial(ctx)
	if err != nil {
		return err
	}
	items := batch.Items

	for i := 0; i < previewSteps && !loader.Exhausted(); i++ {
		next, _, err := loader.LoadNext(ctx, loader.Step())
		if err != nil {
			return err
		}
		items = append(items, next.Items...)
	}

	out := cmd.OutOrStdout()
	if previewCards {
		for i := len(items) - 1; i >= 0; i-- {
			fmt.Fprintln(out, tui.RenderCard(items[i], 64))
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tNAME\tPRICE\tMCAP\tVOL 24H\tADDRESS")
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		mcap, vol := "N/A", "N/A"
		if it.Coin != nil {
			mcap, vol = model.FormatUSD(it.Coin.MarketCap), model.FormatUSD(it.Coin.Volume24h)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Category, it.Name, it.Price, mcap, vol, model.ShortAddress(it.Address()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d cards, exhausted=%v\n", len(items), loader.Exhausted())
	return nil
}
