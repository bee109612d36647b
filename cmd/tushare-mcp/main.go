package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tushare-mcp/internal/config"
	"tushare-mcp/internal/logger"
	"tushare-mcp/internal/sector"
	"tushare-mcp/internal/signals"
	"tushare-mcp/internal/tools"
	"tushare-mcp/internal/tushare"
)

var version = "0.1.0"

var (
	cfgFile string
	format  string
	workers int
	verbose bool
)

// app holds the wired services shared by every command
type app struct {
	cfg      *config.Config
	client   *tushare.Client
	signals  *signals.Service
	sector   *sector.Analyzer
	registry *tools.Registry
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "tushare-mcp",
		Short: "MCP server exposing Tushare Pro market data and signal labels",
		Long: `tushare-mcp serves Tushare Pro data to MCP clients.

Tools:
  data    - Tushare interfaces passed through unchanged (stk_factor_pro, moneyflow, ...)
  signal  - trend, sentiment, valuation, oscillator and volatility labels
  sector  - Shenwan industry valuation, profit growth and screens

Examples:
  tushare-mcp serve
  tushare-mcp serve-http --addr :8080
  tushare-mcp signal trend 000001.SZ --date 20240102
  tushare-mcp sector screen --format json`,
		SilenceUsage: true,
		RunE:         runStdio,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "output format: table, json")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "number of parallel workers for sector scans (default from config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	rootCmd.AddCommand(
		serveCmd(),
		serveHTTPCmd(),
		toolsCmd(),
		signalCmd(),
		sectorCmd(),
		indexCmd(),
		tokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and starts the logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if workers > 0 {
		cfg.Scan.Workers = workers
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = version
	}

	if err := logger.Init(logger.Config{
		Level:          cfg.Log.Level,
		Format:         cfg.Log.Format,
		FileEnabled:    cfg.Log.FileEnabled,
		FilePath:       cfg.Log.FilePath,
		RotationSize:   cfg.Log.RotationSize,
		RetentionDays:  cfg.Log.RetentionDays,
		ServiceName:    "tushare-mcp",
		ServiceVersion: cfg.Server.Version,
	}); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

// newApp wires the client, services and tool registry. requireToken is
// false for commands that never reach the provider.
func newApp(requireToken bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := tushare.NewClient(cfg.Tushare.Token, tushare.Options{
		BaseURL:    cfg.Tushare.BaseURL,
		RateLimit:  cfg.Tushare.RateLimit,
		RateLimits: cfg.Tushare.RateLimits,
		Timeout:    cfg.Tushare.Timeout,
		MaxRetries: cfg.Tushare.MaxRetries,
	})
	if requireToken && !client.IsAvailable() {
		return nil, fmt.Errorf("tushare token is required (set TUSHARE_TOKEN or tushare.token)")
	}
	cached := tushare.NewCached(client, cfg.Tushare.CacheTTL, tushare.DefaultCachedAPIs)
	shared := tushare.NewShared(cached)
	api := tushare.NewAPI(shared)

	a := &app{
		cfg:     cfg,
		client:  client,
		signals: signals.NewService(api, cfg.Thresholds),
		sector:  sector.NewAnalyzer(api, cfg.Sector, cfg.Scan.Workers, cfg.Scan.Timeout),
	}
	a.registry = tools.Build(tools.Deps{
		Querier: shared,
		Signals: a.signals,
		Sector:  a.sector,
	})
	return a, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted. Stopping...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// chinaTime is the exchange timezone
var chinaTime = time.FixedZone("CST", 8*60*60)

// today returns the current exchange date
func today() string {
	return time.Now().In(chinaTime).Format("20060102")
}
