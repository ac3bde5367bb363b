package cli

import (
	"github.com/spf13/cobra"
)

var viewID string

// SetViewID sets the view used by session commands when --view is not given.
func SetViewID(id string) {
	if viewID == "" {
		viewID = id
	}
}

func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session [open|status|logout]",
		Short: "Dashboard sessions",
		Long:  `Open a dashboard view, check its session and log out.`,
	}

	openCmd := &cobra.Command{
		Use:   "open [entry]",
		Short: "Open a view",
		Long: `Evaluate the session of a view opened at an entry address.

Examples:
  # Open a new view without credentials
  greenboard-cli session open

  # Open a view as a sign-in redirect would
  greenboard-cli session open "/?auth=true&name=Ada&email=ada@example.com"`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}
			entry := ""
			if len(args) == 1 {
				entry = args[0]
			}

			ev, err := gsdk.EvaluateSession(viewID, entry)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, ev)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show session status",
		Long:  `Show the session of a view and any pending navigation.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}
			if viewID == "" {
				logErrorCmd(*cmd, errNoViewID)

				return
			}

			st, err := gsdk.SessionStatus(viewID)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, st)
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Long:  `Forget the session of a view.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}
			if viewID == "" {
				logErrorCmd(*cmd, errNoViewID)

				return
			}

			if _, err := gsdk.Logout(viewID); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logOKCmd(*cmd)
		},
	}

	cmd.AddCommand(openCmd)
	cmd.AddCommand(statusCmd)
	cmd.AddCommand(logoutCmd)

	cmd.PersistentFlags().StringVarP(
		&viewID,
		"view",
		"v",
		viewID,
		"View id",
	)

	return cmd
}
