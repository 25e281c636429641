package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/istore/storefront/config"
	"github.com/istore/storefront/notify"
)

// NewNotifierCommand creates the notifier command.
func NewNotifierCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notifier",
		Short: "Mail notifications consumed from Kafka",
		Long: `Consume the notifications topic and send each purchase confirmation
or product removal notice over SMTP. Requires KAFKA_BROKERS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runNotifier(ctx, rootOpts)
		},
	}
}

func runNotifier(ctx context.Context, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client := notify.NewKafkaClient(cfg.Kafka.Brokers)
	if !client.Enabled() {
		return notify.ErrKafkaDisabled
	}
	reader := client.NewReader(cfg.Kafka.Topic, cfg.Kafka.GroupID)
	defer reader.Close()

	logger.Info("notifier started",
		zap.Strings("brokers", client.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", cfg.Kafka.GroupID))

	consumer := notify.NewConsumer(reader, notify.NewMailer(cfg.SMTP, nil), logger)
	return consumer.Run(ctx)
}
