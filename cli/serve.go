package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/config"
	"github.com/istore/storefront/metrics"
	"github.com/istore/storefront/notify"
	"github.com/istore/storefront/storefront"
)

const shutdownTimeout = 15 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront gRPC server",
		Long: `Run the storefront gRPC server with health checks and a prometheus
/metrics endpoint.

Purchase confirmations and removal notices are published to Kafka when
KAFKA_BROKERS is set and mailed directly over SMTP otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	m := metrics.New(nil)

	stores, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}

	sink, closeSink := notificationSink(cfg, logger)
	dispatcher := notify.NewDispatcher(sink, logger, m, cfg.DispatcherConfig())

	srv := storefront.NewServer(storefront.Deps{
		Products: stores.products,
		Carts:    stores.carts,
		Tickets:  stores.tickets,
		Notifier: dispatcher,
		Removals: dispatcher,
		Metrics:  m,
	})

	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(m), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	serveErr := common.RunServer(ctx, logger, common.ServerConfig{
		Name:         "storefront",
		Port:         cfg.Port,
		Interceptors: storefront.Interceptors(logger, m),
	}, func(s *grpc.Server) {
		storefront.RegisterStorefrontServer(s, srv)
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("notifications left undelivered", zap.Error(err))
	}
	if err := closeSink(); err != nil {
		logger.Warn("closing notification sink", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("stopping metrics server", zap.Error(err))
	}
	if err := stores.Close(shutdownCtx); err != nil {
		logger.Warn("closing stores", zap.Error(err))
	}
	return serveErr
}

// notificationSink picks Kafka when brokers are configured and SMTP otherwise.
func notificationSink(cfg *config.Config, logger *zap.Logger) (notify.Sink, func() error) {
	client := notify.NewKafkaClient(cfg.Kafka.Brokers)
	if !client.Enabled() {
		logger.Info("kafka disabled, mailing notifications directly", zap.String("smtp", cfg.SMTP.Addr()))
		return notify.NewMailer(cfg.SMTP, nil), func() error { return nil }
	}
	writer := client.NewWriter(cfg.Kafka.Topic)
	logger.Info("publishing notifications to kafka",
		zap.Strings("brokers", client.Brokers),
		zap.String("topic", cfg.Kafka.Topic))
	return notify.NewPublisher(writer), writer.Close
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
