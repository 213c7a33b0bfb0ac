package cli

import (
	"fmt"

	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List ticketing accounts that can be assigned work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := app.Assignments.Users(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUsers(users))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ask the backend to refetch accounts from the tracker")

	return cmd
}
