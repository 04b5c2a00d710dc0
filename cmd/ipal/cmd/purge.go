package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ipal-monitor/internal/service"
	"ipal-monitor/internal/store"
)

var purgeDays int

// purgeCmd represents the purge command.
var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Hapus data sensor dan peringatan lama",
	Long: `Menghapus data sensor dan peringatan yang lebih lama dari --days hari.

Contoh:
  ipal purge -c config.yaml --days 30`,
	Run: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().IntVar(&purgeDays, "days", service.DefaultRetentionDays, "hapus data lebih lama dari N hari")
}

func runPurge(cmd *cobra.Command, args []string) {
	cfg, logger := loadConfig()
	ctx := context.Background()

	st, err := store.Open(cfg.Database.Path, logger.With().Str("component", "store").Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Gagal membuka database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	retention := service.NewRetentionService(st, nil, logger.With().Str("component", "service").Logger())
	result, err := retention.Purge(ctx, purgeDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Gagal menghapus data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Data sebelum %s dihapus\n", result.Cutoff.In(cfg.Location()).Format("2006-01-02 15:04:05"))
	fmt.Printf("   Data sensor: %d\n", result.Readings)
	fmt.Printf("   Peringatan:  %d\n", result.Alerts)
}
