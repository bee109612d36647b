package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"tushare-mcp/internal/sector"
	"tushare-mcp/internal/tools"
	"tushare-mcp/pkg/model"
)

func toolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			infos := a.registry.AllInfo()
			if format == "json" {
				return outputJSON(infos)
			}

			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Tool", "Group", "Description"}),
			)
			for _, info := range infos {
				table.Append([]string{info.Name, info.Group, truncate(info.Description, 70)})
			}
			table.Render()
			return nil
		},
	}

	var argsJSON string
	call := &cobra.Command{
		Use:   "call <tool>",
		Short: "Call one tool and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			var params map[string]any
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &params); err != nil {
					return fmt.Errorf("parsing --args: %w", err)
				}
			}

			ctx, cancel := signalContext()
			defer cancel()

			res, err := a.registry.Call(ctx, args[0], params)
			if err != nil {
				return err
			}
			fmt.Println(tools.ResultText(res))
			if res.IsError {
				return fmt.Errorf("%s failed", args[0])
			}
			return nil
		},
	}
	call.Flags().StringVar(&argsJSON, "args", "", `tool arguments as a JSON object, e.g. '{"ts_code":"000001.SZ"}'`)
	cmd.AddCommand(call)

	return cmd
}

func signalCmd() *cobra.Command {
	var date, start, end string

	cmd := &cobra.Command{
		Use:   "signal",
		Short: "Compute signal labels for one stock",
	}
	cmd.PersistentFlags().StringVar(&date, "date", "", "trade date YYYYMMDD (default today)")

	day := func(name, short string, fn func(a *app, ctx context.Context, code, date string) (any, error)) *cobra.Command {
		return &cobra.Command{
			Use:   name + " <ts_code>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(true)
				if err != nil {
					return err
				}
				ctx, cancel := signalContext()
				defer cancel()

				d := date
				if d == "" {
					d = today()
				}
				v, err := fn(a, ctx, args[0], d)
				if err != nil {
					return err
				}
				if format == "json" {
					return outputJSON(v)
				}
				return outputFields(v)
			},
		}
	}

	trend := &cobra.Command{
		Use:   "trend <ts_code>",
		Short: "Trend labels for one day or a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			d := date
			if d == "" && start == "" && end == "" {
				d = today()
			}
			rows, err := a.signals.Trend(ctx, args[0], d, start, end)
			if err != nil {
				return err
			}
			if format == "json" {
				return outputJSON(rows)
			}
			return outputRows(rows)
		},
	}
	trend.Flags().StringVar(&start, "start", "", "range start YYYYMMDD")
	trend.Flags().StringVar(&end, "end", "", "range end YYYYMMDD")

	cmd.AddCommand(
		trend,
		day("sentiment", "Turnover, volume and sentiment labels", func(a *app, ctx context.Context, code, d string) (any, error) {
			return a.signals.Sentiment(ctx, code, d)
		}),
		day("valuation", "Valuation labels against five-year history", func(a *app, ctx context.Context, code, d string) (any, error) {
			return a.signals.Valuation(ctx, code, d)
		}),
		day("oscillator", "Overbought/oversold oscillator labels", func(a *app, ctx context.Context, code, d string) (any, error) {
			return a.signals.Oscillator(ctx, code, d)
		}),
		day("volatility", "Volatility regime and risk labels", func(a *app, ctx context.Context, code, d string) (any, error) {
			return a.signals.Volatility(ctx, code, d)
		}),
	)
	return cmd
}

func sectorCmd() *cobra.Command {
	var date, industry string

	cmd := &cobra.Command{
		Use:   "sector",
		Short: "Shenwan level-1 industry analyses",
	}
	cmd.PersistentFlags().StringVar(&date, "date", "", "trade date YYYYMMDD (default today)")

	valuation := &cobra.Command{
		Use:   "valuation",
		Short: "Industry PE/PB percentiles over five years",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, asOf, err := sectorSetup(date)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			vals, err := withProgress(a.sector, "Valuing industries", func() ([]sector.SectorValuation, error) {
				return a.sector.SectorValuations(ctx, asOf)
			})
			if err != nil {
				return err
			}
			if format == "json" {
				return outputJSON(vals)
			}
			return outputValuations(vals)
		},
	}

	growth := &cobra.Command{
		Use:   "growth",
		Short: "Market-cap weighted industry profit growth",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, asOf, err := sectorSetup(date)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			var gs []sector.IndustryGrowth
			if industry != "" {
				g, err := a.sector.IndustryGrowth(ctx, industry, asOf)
				if err != nil {
					return err
				}
				gs = []sector.IndustryGrowth{*g}
			} else {
				gs, err = withProgress(a.sector, "Reading financials", func() ([]sector.IndustryGrowth, error) {
					return a.sector.AllIndustryGrowth(ctx, asOf)
				})
				if err != nil {
					return err
				}
			}
			if format == "json" {
				return outputJSON(gs)
			}
			return outputGrowth(gs)
		},
	}
	growth.Flags().StringVar(&industry, "industry", "", "single SW level-1 code, e.g. 801080.SI")

	screen := &cobra.Command{
		Use:   "screen",
		Short: "Combined valuation and growth screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, asOf, err := sectorSetup(date)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			vals, err := withProgress(a.sector, "Valuing industries", func() ([]sector.SectorValuation, error) {
				return a.sector.SectorValuations(ctx, asOf)
			})
			if err != nil {
				return err
			}
			gs, err := withProgress(a.sector, "Reading financials", func() ([]sector.IndustryGrowth, error) {
				return a.sector.AllIndustryGrowth(ctx, asOf)
			})
			if err != nil {
				return err
			}

			s := a.sector.Thresholds().BuildScreen(vals, gs)
			if format == "json" {
				return outputJSON(s)
			}
			return outputScreen(s)
		},
	}

	cmd.AddCommand(valuation, growth, screen)
	return cmd
}

func indexCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Broad index analyses",
	}

	valuation := &cobra.Command{
		Use:   "valuation",
		Short: "PE(TTM)/PB ten-year percentiles of the broad indices",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, asOf, err := sectorSetup(date)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			vals, err := withProgress(a.sector, "Reading index history", func() ([]sector.IndexValuation, error) {
				return a.sector.IndexValuations(ctx, asOf)
			})
			if err != nil {
				return err
			}
			if format == "json" {
				return outputJSON(vals)
			}
			return outputIndexValuations(vals)
		},
	}
	valuation.Flags().StringVar(&date, "date", "", "trade date YYYYMMDD (default today)")

	cmd.AddCommand(valuation)
	return cmd
}

func sectorSetup(date string) (*app, time.Time, error) {
	a, err := newApp(true)
	if err != nil {
		return nil, time.Time{}, err
	}
	if date == "" {
		date = today()
	}
	asOf, err := model.ParseDate(date)
	if err != nil {
		return nil, time.Time{}, err
	}
	return a, asOf, nil
}
