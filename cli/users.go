package cli

import (
	"github.com/absmach/greenboard/profiles"
	"github.com/spf13/cobra"
)

func NewUsersCmd() *cobra.Command {
	var (
		name     string
		picture  string
		verified bool
	)

	cmd := &cobra.Command{
		Use:   "users [list|view|upsert|stats]",
		Short: "User profiles",
		Long:  `List, view and upsert user profiles and show user statistics.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long:  `List stored user profiles, newest first.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			page, err := gsdk.ListUsers()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, page)
		},
	}

	viewCmd := &cobra.Command{
		Use:   "view <auth0_id>",
		Short: "View user",
		Long:  `View a user profile by identity provider id.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			p, err := gsdk.GetUser(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, p)
		},
	}

	upsertCmd := &cobra.Command{
		Use:   "upsert <auth0_id> <email>",
		Short: "Upsert user",
		Long: `Create or update a user profile.

Examples:
  greenboard-cli users upsert "auth0|65f1c0" ada@example.com --name Ada --verified`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			p, err := gsdk.UpsertUser(profiles.Profile{
				ExternalID:    args[0],
				Email:         args[1],
				Name:          name,
				Picture:       picture,
				EmailVerified: verified,
			})
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, p)
		},
	}

	upsertCmd.Flags().StringVar(&name, "name", "", "Display name")
	upsertCmd.Flags().StringVar(&picture, "picture", "", "Picture URL")
	upsertCmd.Flags().BoolVar(&verified, "verified", false, "Mark the email as verified")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "User statistics",
		Long:  `Show total, verified and recent users and the verification rate.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			st, err := gsdk.UserStats()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, st)
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(viewCmd)
	cmd.AddCommand(upsertCmd)
	cmd.AddCommand(statsCmd)

	return cmd
}
