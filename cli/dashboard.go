package cli

import (
	"errors"

	"github.com/absmach/greenboard/dashboard"
	"github.com/absmach/greenboard/pkg/sdk"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errNoViewID = errors.New("no view id: run `session open` first or pass --view")

var gsdk sdk.SDK

func SetSDK(s sdk.SDK) {
	gsdk = s
}

func NewSnapshotCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Show the dashboard snapshot",
		Long: `Show live or simulated dashboard metrics with their health levels.

Examples:
  greenboard-cli snapshot
  greenboard-cli snapshot --refresh`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			get := gsdk.Snapshot
			if refresh {
				get = gsdk.RefreshSnapshot
			}
			snap, err := get()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logSuccessCmd(*cmd, modeLine(snap))
			logJSONCmd(*cmd, snap)
		},
	}

	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Fetch live metrics before showing the snapshot")

	return cmd
}

func NewDatabaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "db-status",
		Short: "Check the profile database",
		Long:  `Check connectivity to the profile database and show user statistics.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			p, err := gsdk.DatabaseStatus()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, p)
		},
	}
}

func modeLine(snap dashboard.Snapshot) string {
	line := "mode: " + string(snap.Mode)
	if snap.Notice != "" {
		line += " (" + color.YellowString(snap.Notice) + ")"
	}

	return line
}
