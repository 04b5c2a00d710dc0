package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ipal-monitor/internal/model"
	"ipal-monitor/internal/report"
	"ipal-monitor/internal/service"
	"ipal-monitor/internal/store"
)

// Command flags
var (
	reportPeriod string   // today, week or month
	outputDir    string   // Output directory for reports
	formats      []string // Output formats (excel, html)
)

// reportCmd represents the report command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Buat laporan kualitas air",
	Long: `Membuat laporan Excel dan/atau HTML dari data sensor di database.

Kode keluar: 0 tanpa peringatan, 1 ada peringatan, 2 ada peringatan bahaya.

Contoh:
  ipal report -c config.yaml --period week
  ipal report -c config.yaml --period month --format html -o /tmp/laporan`,
	Run: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportPeriod, "period", "p", model.PeriodToday, "periode laporan (today, week, month)")
	reportCmd.Flags().StringVarP(&outputDir, "output", "o", "", "direktori output (default dari konfigurasi)")
	reportCmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "format output (excel, html)")
}

func runReport(cmd *cobra.Command, args []string) {
	cfg, logger := loadConfig()
	ctx := context.Background()
	loc := cfg.Location()

	registry := report.NewRegistry(loc, cfg.Report.HTMLTemplate)
	outputFormats := formats
	if len(outputFormats) == 0 {
		outputFormats = cfg.Report.Formats
	}
	if len(outputFormats) == 0 {
		outputFormats = registry.Formats()
	}
	for _, f := range outputFormats {
		if !registry.Has(f) {
			fmt.Fprintf(os.Stderr, "❌ Format tidak didukung: %s (tersedia: %v)\n", f, registry.Formats())
			os.Exit(1)
		}
	}

	outputPath := outputDir
	if outputPath == "" {
		outputPath = cfg.Report.OutputDir
	}
	if outputPath == "" {
		outputPath = "./reports"
	}
	if err := os.MkdirAll(outputPath, 0755); err != nil {
		logger.Error().Err(err).Str("path", outputPath).Msg("failed to create output directory")
		fmt.Fprintf(os.Stderr, "❌ Gagal membuat direktori output: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.Database.Path, logger.With().Str("component", "store").Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Gagal membuka database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	svc := service.NewReportService(st, cfg.Device.Name, Version, loc, logger.With().Str("component", "service").Logger())
	rep, err := svc.Build(ctx, reportPeriod)
	if err != nil {
		logger.Error().Err(err).Str("period", reportPeriod).Msg("failed to build report")
		fmt.Fprintf(os.Stderr, "❌ Gagal menyusun laporan: %v\n", err)
		os.Exit(1)
	}

	printReportSummary(rep)

	for _, out := range registry.WriteAll(rep, outputPath, cfg.Report.FilenameTemplate, outputFormats) {
		if out.Err != nil {
			logger.Error().Err(out.Err).Str("format", out.Format).Str("path", out.Path).Msg("failed to generate report")
			fmt.Fprintf(os.Stderr, "   ❌ Laporan %s gagal: %v\n", out.Format, out.Err)
			continue
		}

		logger.Info().Str("format", out.Format).Str("path", out.Path).Msg("report generated successfully")
		fmt.Printf("   ✅ %s\n", out.Path)
	}

	switch {
	case rep.HasDanger():
		os.Exit(2)
	case rep.HasAlerts():
		os.Exit(1)
	}
}

func printReportSummary(r *model.Report) {
	fmt.Printf("📊 Laporan %s (%s)\n", r.DeviceName, r.Period)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if r.StatusSummary != nil {
		fmt.Printf("   Jumlah data: %d\n", r.StatusSummary.Total)
		fmt.Printf("   Normal:      %d\n", r.StatusSummary.Normal)
		fmt.Printf("   Peringatan:  %d\n", r.StatusSummary.Warning)
		fmt.Printf("   Bahaya:      %d\n", r.StatusSummary.Danger)
	}
	if r.AlertSummary != nil {
		fmt.Printf("   Total alert: %d (bahaya %d)\n", r.AlertSummary.TotalAlerts, r.AlertSummary.DangerCount)
	}
	fmt.Println()
}
