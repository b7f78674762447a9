// Command chart-render draws the finance chart of a snapshot file as SVG,
// without a server. Input is the seed CSV (year,month,income,expenses,assets)
// or a JSON array of chart points.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"agencia/internal/chart"
	"agencia/internal/core"
	"agencia/internal/locale"
	applog "agencia/internal/log"
	"agencia/internal/services"
	"agencia/internal/sheets/memory"
)

var (
	flagFilter string
	flagWidth  float64
	flagHover  int
	flagLocale string
	flagYear   int
	flagOut    string
	flagFormat string
)

var rootCmd = &cobra.Command{
	Use:   "chart-render [file]",
	Short: "Render the finance chart of a snapshot file",
	Long: "Render the finance chart of a snapshot CSV or a JSON array of chart points.\n" +
		"Reads stdin when the file is omitted or \"-\".",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRender,
}

func init() {
	rootCmd.Flags().StringVarP(&flagFilter, "filter", "f", string(chart.FilterAll), "Series to show: all, income, expenses or assets")
	rootCmd.Flags().Float64VarP(&flagWidth, "width", "w", chart.DefaultWidth, "Chart width in pixels")
	rootCmd.Flags().IntVar(&flagHover, "hover", -1, "Index to draw hovered, -1 for none")
	rootCmd.Flags().StringVarP(&flagLocale, "locale", "l", locale.Default().Code(), "Display locale (pt-BR, en-US, it-IT)")
	rootCmd.Flags().IntVarP(&flagYear, "year", "y", 0, "Year to draw from a CSV; defaults to the latest year in the file")
	rootCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file; stdout when empty")
	rootCmd.Flags().StringVar(&flagFormat, "format", "", "Input format: csv or json; guessed from the file extension")
}

func main() {
	// stdout carries the SVG.
	logCfg := applog.ConfigFromEnv(applog.ComponentChart)
	logCfg.Output = os.Stderr
	logger := applog.New(logCfg)
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Render failed", applog.FieldError, err, applog.FieldOperation, applog.OpRender)
		os.Exit(1)
	}
}

// renderOptions is the parsed flag set.
type renderOptions struct {
	Filter chart.Filter
	Width  float64
	Hover  int
	Locale locale.Profile
	Year   int
	Format string
}

func runRender(cmd *cobra.Command, args []string) error {
	name := "-"
	if len(args) == 1 {
		name = args[0]
	}

	var in io.Reader = cmd.InOrStdin()
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	format := strings.ToLower(flagFormat)
	if format == "" {
		format = "csv"
		if strings.EqualFold(filepath.Ext(name), ".json") {
			format = "json"
		}
	}

	var out io.Writer = cmd.OutOrStdout()
	if flagOut != "" {
		f, err := os.Create(flagOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return render(in, out, renderOptions{
		Filter: chart.ParseFilter(flagFilter),
		Width:  flagWidth,
		Hover:  flagHover,
		Locale: locale.Lookup(flagLocale),
		Year:   flagYear,
		Format: format,
	})
}

func render(in io.Reader, out io.Writer, opts renderOptions) error {
	if opts.Width < chart.MinWidth {
		return fmt.Errorf("width %v is below the minimum of %d", opts.Width, chart.MinWidth)
	}

	var (
		points []chart.DataPoint
		err    error
	)
	switch opts.Format {
	case "json":
		err = json.NewDecoder(in).Decode(&points)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case "csv":
		points, err = csvPoints(in, opts.Year, opts.Locale)
	default:
		err = fmt.Errorf("unknown input format %q", opts.Format)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	c := chart.New(points,
		chart.WithFilter(opts.Filter),
		chart.WithWidth(opts.Width),
		chart.WithLocale(opts.Locale))
	if opts.Hover >= 0 {
		c.Enter(opts.Hover)
	}
	return chart.RenderSVG(out, c.View())
}

// csvPoints reads seed CSV rows and keeps one year, the latest unless year
// is set.
func csvPoints(in io.Reader, year int, loc locale.Profile) ([]chart.DataPoint, error) {
	items, err := memory.ParseSeed(in)
	if err != nil {
		return nil, err
	}
	if year == 0 {
		for _, it := range items {
			year = max(year, it.Year)
		}
	}

	var kept []core.Snapshot
	for _, it := range items {
		if it.Year == year {
			kept = append(kept, it)
		}
	}
	core.SortSnapshots(kept)
	return services.ToDataPoints(kept, loc), nil
}
