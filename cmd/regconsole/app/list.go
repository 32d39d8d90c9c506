package app

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newListCmd(v *viper.Viper) *cobra.Command {
	var (
		search      string
		statusValue string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the registered service instances",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()

			a, err := newConsole(ctx, v)
			if err != nil {
				return err
			}
			defer func() { err = closeConsole(a, err) }()

			if err := a.SyncManager().Refresh(ctx, true); err != nil {
				return refreshError(err)
			}

			a.SetSearch(search)
			a.SetStatusFilter(statusValue)

			out := cmd.OutOrStdout()
			if err := renderStatistics(out, a.Statistics()); err != nil {
				return err
			}
			return renderServices(out, a.Filtered(), a.Services(), time.Now())
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Show only services whose name contains this text (case-insensitive)")
	cmd.Flags().StringVar(&statusValue, "status", "all", "Show only instances with this status (UP, DOWN or all)")

	return cmd
}
