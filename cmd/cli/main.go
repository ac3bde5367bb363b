package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/absmach/greenboard"
	"github.com/absmach/greenboard/cli"
	"github.com/absmach/greenboard/pkg/mqtt"
	"github.com/absmach/greenboard/pkg/sdk"
	"github.com/spf13/cobra"
)

const defConfigPath = "config.toml"

func main() {
	var (
		configPath   string
		dashboardURL string
	)

	rootCmd := &cobra.Command{
		Use:   "greenboard-cli",
		Short: "Greenboard CLI",
		Long:  `Greenboard CLI is a command line interface for the model comparison and sustainability dashboard.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := greenboard.LoadConfig(configPath)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if dashboardURL != "" {
				cfg.Dashboard.URL = dashboardURL
			}

			cli.SetSDK(sdk.NewSDK(sdk.Config{
				DashboardURL:    cfg.Dashboard.URL,
				TLSVerification: cfg.Dashboard.TLSVerification,
			}))
			cli.SetViewID(cfg.Dashboard.ViewID)
			cli.SetMQTTConfig(mqtt.Config{
				URL:       cfg.MQTT.URL,
				ClientID:  cfg.MQTT.ClientID,
				Username:  cfg.MQTT.Username,
				Password:  cfg.MQTT.Password,
				DomainID:  cfg.MQTT.DomainID,
				ChannelID: cfg.MQTT.ChannelID,
				QoS:       cfg.MQTT.QoS,
				Timeout:   cfg.MQTT.Timeout,
			})

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defConfigPath, "Config file path")
	rootCmd.PersistentFlags().StringVarP(&dashboardURL, "dashboard-url", "u", "", "Dashboard service URL")

	rootCmd.AddCommand(cli.NewSnapshotCmd())
	rootCmd.AddCommand(cli.NewSessionCmd())
	rootCmd.AddCommand(cli.NewUsersCmd())
	rootCmd.AddCommand(cli.NewDatabaseCmd())
	rootCmd.AddCommand(cli.NewWatchCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
