package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ipal-monitor/internal/client/device"
	"ipal-monitor/internal/config"
)

// Command flags
var (
	simURL         string
	simAPIKey      string
	simInterval    time.Duration
	simCount       int
	simAnomalyRate float64
	simSeed        int64
	simTimeout     time.Duration
	simRetries     int
)

// simulateCmd represents the simulate command.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulasikan perangkat sensor ESP32",
	Long: `Mengirim data sensor sintetis (pH, suhu, TDS) ke server seperti perangkat ESP32.
Sebagian data dibuat di luar batas normal sesuai --anomaly-rate.

Contoh:
  ipal simulate --url http://localhost:5000 --interval 5s
  ipal simulate --url http://localhost:5000 --count 20 --anomaly-rate 0.3 --api-key rahasia`,
	Run: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVar(&simURL, "url", "http://localhost:5000", "alamat server")
	simulateCmd.Flags().StringVar(&simAPIKey, "api-key", "", "nilai header X-API-Key")
	simulateCmd.Flags().DurationVar(&simInterval, "interval", 5*time.Second, "jeda antar pengiriman")
	simulateCmd.Flags().IntVar(&simCount, "count", 0, "jumlah pengiriman (0 = tanpa batas)")
	simulateCmd.Flags().Float64Var(&simAnomalyRate, "anomaly-rate", 0.1, "peluang data di luar batas (0-1)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "seed generator (0 = waktu sekarang)")
	simulateCmd.Flags().DurationVar(&simTimeout, "timeout", 10*time.Second, "timeout request")
	simulateCmd.Flags().IntVar(&simRetries, "retries", 3, "jumlah retry saat server error")
}

func runSimulate(cmd *cobra.Command, args []string) {
	logger := setupLogger(GetLogLevel(), "console", time.Local)

	if simAnomalyRate < 0 || simAnomalyRate > 1 {
		fmt.Fprintf(os.Stderr, "❌ --anomaly-rate harus di antara 0 dan 1\n")
		os.Exit(1)
	}
	if simSeed == 0 {
		simSeed = time.Now().UnixNano()
	}

	httpCfg := &config.HTTPConfig{
		Timeout: simTimeout,
		Retry:   config.RetryConfig{MaxRetries: simRetries, BaseDelay: time.Second},
	}
	// The config file is optional here; when present it fills unset flags.
	if cfg, err := config.Load(GetConfigFile()); err == nil {
		if !cmd.Flags().Changed("timeout") {
			httpCfg.Timeout = cfg.HTTP.Timeout
		}
		if !cmd.Flags().Changed("retries") {
			httpCfg.Retry = cfg.HTTP.Retry
		}
		if simAPIKey == "" && len(cfg.Device.APIKeys) > 0 {
			simAPIKey = cfg.Device.APIKeys[0]
		}
	}

	client := device.NewClient(simURL, simAPIKey, httpCfg, logger.With().Str("component", "simulator").Logger())
	gen := device.NewGenerator(simSeed, simAnomalyRate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if health, err := client.Health(ctx); err != nil {
		logger.Warn().Err(err).Msg("health check failed")
	} else if !health.IsHealthy() {
		logger.Warn().Interface("checks", health.Checks).Msg("server reports unhealthy")
	}

	fmt.Printf("📡 Mengirim data ke %s setiap %s\n", simURL, simInterval)

	ticker := time.NewTicker(simInterval)
	defer ticker.Stop()

	sent, failed := 0, 0
	for {
		reading := gen.Next()
		resp, err := client.SendReading(ctx, reading)
		switch {
		case err == nil:
			sent++
			fmt.Printf("   pH %.2f  suhu %.1f°C  TDS %.0f ppm → %s (%d alert)\n",
				reading.PH, reading.Temperature, reading.TDS, resp.Status, resp.AlertsCount)
		case errors.Is(err, device.ErrRejected):
			failed++
			logger.Error().Err(err).Msg("reading rejected")
			if failed == 1 && sent == 0 {
				// Bad API key or payload; retrying cannot help
				os.Exit(1)
			}
		case ctx.Err() != nil:
		default:
			failed++
			logger.Error().Err(err).Msg("failed to send reading")
		}

		if simCount > 0 && sent+failed >= simCount {
			break
		}

		select {
		case <-ctx.Done():
			fmt.Printf("⏹  Dihentikan: %d terkirim, %d gagal\n", sent, failed)
			return
		case <-ticker.C:
		}
	}

	fmt.Printf("✅ Selesai: %d terkirim, %d gagal\n", sent, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
