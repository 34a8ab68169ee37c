package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/base-swiper/internal/config"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swiper.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
		want    string
	}{
		{"text", config.LoggingConfig{Level: "info", Format: "text"}, false, "msg=hello"},
		{"json", config.LoggingConfig{Level: "debug", Format: "json"}, false, `"msg":"hello"`},
		{"bad format", config.LoggingConfig{Level: "info", Format: "xml"}, true, ""},
		{"bad level", config.LoggingConfig{Level: "loud", Format: "text"}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := newLogger(tt.cfg, &buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			logger.Info("hello")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestServerConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.AllowedOrigins = []string{"https://warpcast.com"}

	sc := serverConfig(cfg)
	if sc.Addr != cfg.Server.Addr {
		t.Errorf("Addr = %q, want %q", sc.Addr, cfg.Server.Addr)
	}
	if sc.PongWait != cfg.Server.PongWait {
		t.Errorf("PongWait = %v, want %v", sc.PongWait, cfg.Server.PongWait)
	}
	if len(sc.AllowedOrigins) != 1 {
		t.Errorf("AllowedOrigins = %v", sc.AllowedOrigins)
	}

	cfg.Metrics.Enabled = false
	if got := serverConfig(cfg).MetricsPath; got != "" {
		t.Errorf("MetricsPath = %q with metrics disabled, want empty", got)
	}
	cfg.Metrics.Enabled = true
	if got := serverConfig(cfg).MetricsPath; got != cfg.Metrics.Path {
		t.Errorf("MetricsPath = %q, want %q", got, cfg.Metrics.Path)
	}

	wc := writerConfig(cfg)
	if wc.BatchSize != cfg.Writer.BatchSize || wc.FlushInterval != cfg.Writer.FlushInterval {
		t.Errorf("writerConfig = %+v, want %+v", wc, cfg.Writer)
	}
}

func exploreServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		listType := q.Get("listType")
		w.Header().Set("Content-Type", "application/json")

		if listType == "NEW" && q.Get("after") != "" {
			fmt.Fprint(w, `{"exploreList":{"edges":[],"pageInfo":{"hasNextPage":false}}}`)
			return
		}

		var edges []string
		for i := 0; i < 3; i++ {
			edges = append(edges, fmt.Sprintf(
				`{"node":{"name":"%s %d","address":"0x%s%02d","marketCap":"1500000"}}`,
				listType, i, strings.Repeat("0", 36)+fmt.Sprintf("%02d", len(listType)), i))
		}
		fmt.Fprintf(w, `{"exploreList":{"edges":[%s],"pageInfo":{"endCursor":"%s-1","hasNextPage":true}}}`,
			strings.Join(edges, ","), listType)
	}))
}

func TestPreviewCommand(t *testing.T) {
	srv := exploreServer(t)
	defer srv.Close()

	path := writeTempFile(t, fmt.Sprintf(`
api:
  base_url: %s
  max_retries: 0
feed:
  sequence: [FEATURED, NEW]
  page_size: 3
logging:
  level: error
`, srv.URL))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"preview", "--config", path, "--steps", "2"})
	defer func() {
		rootCmd.SetArgs(nil)
		configPath, previewSteps = "", 0
	}()

	done := make(chan error, 1)
	go func() { done <- rootCmd.Execute() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("preview: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("preview timed out")
	}

	got := out.String()
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[1], "6 ") {
		t.Errorf("first row should be card 6:\n%s", got)
	}
	for _, want := range []string{"FEATURED 0", "NEW 2", "$1.50M", "6 cards, exhausted=true"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		versionJSON = false
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), `"version": "dev"`) {
		t.Errorf("output = %s", out.String())
	}
}
