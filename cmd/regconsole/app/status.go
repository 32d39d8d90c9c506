package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklok/registry-console/internal/status"
)

func newStatusCmd() *cobra.Command {
	var (
		statusFile string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last refresh outcome written by 'regconsole watch'",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if statusFile == "" {
				return errors.New("--status-file is required")
			}

			st, err := status.NewFileStatusPersistence(statusFile).LoadStatus(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				data, err := json.MarshalIndent(st, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format status as JSON: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			if st.Phase == "" {
				_, err = fmt.Fprintln(out, "No refresh recorded yet")
				return err
			}

			_, err = fmt.Fprintf(out, "Phase: %s\nMessage: %s\nLast attempt: %s\nLast success: %s\nAttempts since success: %d\nInstances: %d\n",
				st.Phase,
				st.Message,
				formatOptionalTime(st.LastAttempt),
				formatOptionalTime(st.LastSyncTime),
				st.AttemptCount,
				st.InstanceCount,
			)
			if err != nil {
				return err
			}

			if !st.Healthy() {
				return fmt.Errorf("last refresh failed: %s", st.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFile, "status-file", "", "Status file written by 'regconsole watch --status-file'")
	cmd.Flags().StringVar(&format, "format", "", "Output format (json)")

	return cmd
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}
