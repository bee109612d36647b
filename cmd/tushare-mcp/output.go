package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"tushare-mcp/internal/sector"
	"tushare-mcp/pkg/model"
)

func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// withProgress runs fn with a progress bar on stderr fed by the
// analyzer's callback
func withProgress[T any](a *sector.Analyzer, desc string, fn func() ([]T, error)) ([]T, error) {
	var (
		mu  sync.Mutex
		bar *progressbar.ProgressBar
	)
	a.SetProgressCallback(func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription(desc),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]█[reset]",
					SaucerHead:    "[green]█[reset]",
					SaucerPadding: "░",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
		}
		bar.Set(done)
	})
	defer a.SetProgressCallback(nil)

	out, err := fn()

	mu.Lock()
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	mu.Unlock()
	return out, err
}

// fields lists a struct's JSON names and rendered values in declaration
// order, flattening embedded structs
func fields(v any) (names, values []string) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			n, vs := fields(rv.Field(i).Interface())
			names = append(names, n...)
			values = append(values, vs...)
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			name = f.Name
		}
		names = append(names, name)
		values = append(values, render(rv.Field(i).Interface()))
	}
	return names, values
}

func render(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		return "-"
	}
	return s
}

// outputFields prints one struct as a two-column table
func outputFields(v any) error {
	names, values := fields(v)
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Field", "Value"}),
	)
	for i := range names {
		table.Append([]string{names[i], values[i]})
	}
	table.Render()
	return nil
}

// outputRows prints a slice of structs with one column per field
func outputRows[T any](rows []T) error {
	if len(rows) == 0 {
		fmt.Println("No rows.")
		return nil
	}
	header, _ := fields(rows[0])
	table := tablewriter.NewTable(os.Stdout, tablewriter.WithHeader(header))
	for _, r := range rows {
		_, values := fields(r)
		table.Append(values)
	}
	table.Render()
	return nil
}

func outputValuations(vals []sector.SectorValuation) error {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Code", "Industry", "PE", "PE Pct", "PB", "PB Pct", "Metric", "Status"}),
	)
	for _, v := range vals {
		table.Append([]string{
			v.TSCode,
			v.Name,
			num(v.PELatest, "%.2f"),
			num(v.PEPercentile, "%.0f%%"),
			num(v.PBLatest, "%.2f"),
			num(v.PBPercentile, "%.0f%%"),
			string(v.PrimaryMetric),
			string(v.ValuationStatus),
		})
	}
	table.Render()
	return nil
}

func outputGrowth(gs []sector.IndustryGrowth) error {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Code", "Industry", "Profit YoY", "Valid", "Total", "Quality"}),
	)
	for _, g := range gs {
		table.Append([]string{
			g.IndustryCode,
			g.IndustryName,
			num(g.ProfitYoYWeighted, "%+.2f%%"),
			fmt.Sprintf("%d", g.ValidStockCount),
			fmt.Sprintf("%d", g.TotalStockCount),
			g.DataQualityFlag,
		})
	}
	table.Render()
	return nil
}

func outputIndexValuations(vals []sector.IndexValuation) error {
	if len(vals) == 0 {
		fmt.Println("No index history available.")
		return nil
	}
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Code", "Index", "PE(TTM)", "PE Pct 10Y", "PB", "PB Pct 10Y", "Status"}),
	)
	for _, v := range vals {
		table.Append([]string{
			v.TSCode,
			v.Name,
			fmt.Sprintf("%.2f", v.CurrentPETTM),
			fmt.Sprintf("%.1f%%", v.PETTMPercentile10Y),
			fmt.Sprintf("%.2f", v.CurrentPB),
			fmt.Sprintf("%.1f%%", v.PBPercentile10Y),
			string(v.ValuationStatus),
		})
	}
	table.Render()
	return nil
}

func outputScreen(s *sector.Screen) error {
	sum := s.Summary
	fmt.Printf("Industries: %d (%d with growth data)\n", sum.TotalIndustries, sum.WithGrowthData)
	fmt.Printf("Growth mean: %s | median: %s\n", num(sum.MeanGrowth, "%+.2f%%"), num(sum.MedianGrowth, "%+.2f%%"))
	fmt.Printf("Status: %d overvalued, %d neutral, %d undervalued, %d unknown\n",
		sum.StatusCounts[sector.StatusOvervalued], sum.StatusCounts[sector.StatusNeutral],
		sum.StatusCounts[sector.StatusUndervalued], sum.StatusCounts[sector.StatusUnknown])

	lists := []struct {
		title string
		rows  []sector.ScreenRow
	}{
		{"High growth", s.HighGrowth},
		{"Value growth", s.ValueGrowth},
		{"Risk", s.Risk},
		{"High growth, reasonable value", s.HighGrowthReasonableValue},
		{"Steady growth", s.SteadyGrowth},
		{"Turnaround", s.Turnaround},
	}
	for _, l := range lists {
		fmt.Printf("\n--- %s (%d) ---\n", l.title, len(l.rows))
		if len(l.rows) == 0 {
			continue
		}
		table := tablewriter.NewTable(os.Stdout,
			tablewriter.WithHeader([]string{"Code", "Industry", "Profit YoY", "Status", "Quality"}),
		)
		for _, r := range l.rows {
			table.Append([]string{
				r.TSCode,
				r.Name,
				num(r.ProfitYoYWeighted, "%+.2f%%"),
				string(r.ValuationStatus),
				r.DataQualityFlag,
			})
		}
		table.Render()
	}
	return nil
}

func num(f model.Float, layout string) string {
	if !f.Valid {
		return "-"
	}
	return fmt.Sprintf(layout, f.Value)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
