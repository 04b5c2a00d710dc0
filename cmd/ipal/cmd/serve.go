package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ipal-monitor/internal/api"
	"ipal-monitor/internal/auth"
	"ipal-monitor/internal/cache"
	"ipal-monitor/internal/config"
	"ipal-monitor/internal/events"
	"ipal-monitor/internal/hub"
	"ipal-monitor/internal/report"
	"ipal-monitor/internal/service"
	"ipal-monitor/internal/store"
)

var serveAddr string // Overrides server.address

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Jalankan server monitoring",
	Long: `Menjalankan server HTTP: endpoint data sensor, dashboard web, WebSocket,
pemantau status perangkat dan pembersihan data lama (jika retention.days > 0).

Contoh:
  ipal serve -c config.yaml
  ipal serve -c config.yaml --addr :8080`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "alamat listen (menimpa server.address)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, logger := loadConfig()
	if serveAddr != "" {
		cfg.Server.Address = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// serve wires every component and blocks until ctx is cancelled or a component fails.
func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	st, err := store.Open(cfg.Database.Path, logger.With().Str("component", "store").Logger())
	if err != nil {
		return err
	}
	defer st.Close()

	if err := service.Bootstrap(ctx, st, cfg); err != nil {
		return fmt.Errorf("failed to bootstrap database: %w", err)
	}

	checks := map[string]api.Pinger{"database": st}

	var latest service.LatestCache
	if cfg.Redis.Enabled() {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rc.Close()
		latest = rc
		checks["redis"] = rc
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("latest-reading cache enabled")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.WriteTimeout,
			logger.With().Str("component", "kafka").Logger())
		if err != nil {
			logger.Warn().Err(err).Msg("kafka publisher disabled")
		} else {
			publisher = kp
			logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("event publishing enabled")
		}
	}
	defer publisher.Close()

	loc := cfg.Location()
	svcLogger := logger.With().Str("component", "service").Logger()

	h := hub.NewHub(cfg.Server.AllowedOrigins, logger.With().Str("component", "hub").Logger())
	device := service.NewDeviceService(st, h, cfg.Device.Name, cfg.Device.OfflineAfter, svcLogger)
	retention := service.NewRetentionService(st, latest, svcLogger)

	ingestOpts := []service.IngestOption{service.WithPublisher(publisher), service.WithBroadcaster(h)}
	if latest != nil {
		ingestOpts = append(ingestOpts, service.WithCache(latest))
	}

	srv, err := api.NewServer(api.Deps{
		Auth:           auth.NewManager(cfg.Auth, cfg.Device.APIKeys),
		Hub:            h,
		Ingest:         service.NewIngestService(st, service.NewEvaluator(svcLogger), cfg.Device.Name, svcLogger, ingestOpts...),
		Query:          service.NewQueryService(st, latest, loc, svcLogger),
		Thresholds:     service.NewThresholdService(st, svcLogger),
		Device:         device,
		Users:          service.NewUserService(st, svcLogger),
		Retention:      retention,
		Reports:        service.NewReportService(st, cfg.Device.Name, Version, loc, svcLogger),
		Registry:       report.NewRegistry(loc, cfg.Report.HTMLTemplate),
		ReportFilename: cfg.Report.FilenameTemplate,
		Checks:         checks,
		TrustProxy:     cfg.Server.TrustProxy,
	}, logger.With().Str("component", "http").Logger())
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return device.Run(gctx, cfg.Device.CheckInterval)
	})
	if cfg.Retention.Days > 0 {
		g.Go(func() error {
			return retention.Run(gctx, cfg.Retention.Days, cfg.Retention.Interval)
		})
	}
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Server.Address).Str("version", Version).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down http server")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
