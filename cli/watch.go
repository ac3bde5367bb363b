package cli

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/absmach/greenboard/pkg/mqtt"
	"github.com/spf13/cobra"
)

var errNoBroker = errors.New("no mqtt broker configured")

var mqttCfg mqtt.Config

// SetMQTTConfig sets the broker used by the watch command.
func SetMQTTConfig(cfg mqtt.Config) {
	mqttCfg = cfg
}

func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch published snapshots",
		Long:  `Subscribe to the snapshot topic and print every snapshot until interrupted.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}
			if mqttCfg.URL == "" {
				logErrorCmd(*cmd, errNoBroker)

				return
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := watch(ctx, *cmd, mqttCfg); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logOKCmd(*cmd)
		},
	}
}

func watch(ctx context.Context, cmd cobra.Command, cfg mqtt.Config) error {
	logger := slog.New(slog.DiscardHandler)

	ps, err := mqtt.NewPubSub(cfg, logger)
	if err != nil {
		return err
	}
	defer ps.Disconnect(context.Background())

	return subscribeAndPrint(ctx, cmd, ps, mqtt.SnapshotTopic(cfg.DomainID, cfg.ChannelID))
}

func subscribeAndPrint(ctx context.Context, cmd cobra.Command, ps mqtt.PubSub, topic string) error {
	if err := ps.Subscribe(ctx, topic, func(_ string, msg map[string]any) error {
		logJSONCmd(cmd, msg)

		return nil
	}); err != nil {
		return err
	}
	logSuccessCmd(cmd, "watching "+topic)

	<-ctx.Done()

	return ps.Unsubscribe(context.Background(), topic)
}
