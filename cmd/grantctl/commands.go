package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grantpilot/internal/model"
)

var (
	exportFormat string
	exportOut    string
	importIn     string
	calendarICS  bool
	calendarOut  string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show pipeline totals and upcoming deadlines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := api.Dashboard(cmd.Context())
		if err != nil {
			return err
		}
		printDashboard(cmd.OutOrStdout(), d)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every collection as JSON or XLSX",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFormat != "json" && exportFormat != "xlsx" {
			return fmt.Errorf("unsupported format %q", exportFormat)
		}
		if exportFormat == "xlsx" && exportOut == "" {
			return fmt.Errorf("--out is required for xlsx exports")
		}
		body, err := api.Export(cmd.Context(), exportFormat)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), exportOut, body)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace collections from an exported JSON bundle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := os.ReadFile(importIn)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", importIn, err)
		}
		if !json.Valid(body) {
			return fmt.Errorf("%s is not valid JSON", importIn)
		}
		out, err := api.Import(cmd.Context(), body)
		if err != nil {
			return err
		}
		log.Debug("Import response", zap.Any("response", out))
		fmt.Fprintf(cmd.OutOrStdout(), "imported: %v\n", out["imported"])
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demonstration dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := api.Seed(cmd.Context())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if !res.Seeded {
			fmt.Fprintln(w, res.Message)
			return nil
		}
		colls := make([]string, 0, len(res.Summary))
		for coll := range res.Summary {
			colls = append(colls, coll)
		}
		sort.Strings(colls)
		for _, coll := range colls {
			fmt.Fprintf(w, "%-12s %d\n", coll, res.Summary[coll])
		}
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Export open deadlines as events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := api.Calendar(cmd.Context(), calendarICS)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), calendarOut, body)
	},
}

func printDashboard(w io.Writer, d *model.Dashboard) {
	fmt.Fprintf(w, "Pending:      $%s\n", humanize.Commaf(d.TotalPending))
	fmt.Fprintf(w, "Awarded:      $%s\n", humanize.Commaf(d.TotalAwarded))
	fmt.Fprintf(w, "Active:       %d\n", d.ActiveGrants)
	fmt.Fprintf(w, "In progress:  %d\n", d.InProgress)
	fmt.Fprintf(w, "Success rate: %d%%\n", d.SuccessRate)
	fmt.Fprintf(w, "Overdue:      %d\n", d.OverdueCount)

	fmt.Fprintln(w, "\nPipeline:")
	for _, stage := range model.Stages {
		fmt.Fprintf(w, "  %-12s %d\n", stage, d.Pipeline[stage])
	}

	if len(d.UpcomingDeadlines) == 0 {
		return
	}
	fmt.Fprintln(w, "\nUpcoming:")
	for _, dl := range d.UpcomingDeadlines {
		fmt.Fprintf(w, "  %s  %-10s %3dd  %s\n", dl.Date, dl.Type, dl.DaysLeft, dl.Title)
	}
}

func writeOutput(stdout io.Writer, path string, body []byte) error {
	if path == "" {
		_, err := stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Info("Wrote output", zap.String("path", path), zap.String("size", humanize.Bytes(uint64(len(body)))))
	return nil
}
