// Package app provides the commands of the regconsole CLI.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/registry-console/internal/config"
	"github.com/stacklok/registry-console/internal/versions"
)

// Flag and viper keys shared by every command
const (
	flagConfig   = "config"
	flagEndpoint = "endpoint"
	flagInterval = "interval"
)

// NewRootCmd creates the root command. Every call returns an independent
// command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	rootCmd := &cobra.Command{
		Use:               "regconsole",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Short:             "Service registry console",
		Long: `regconsole mirrors a service registry and manages its instances:
register, deregister, heartbeat, rate limits and virtual domains.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				slog.Error("Error displaying help", "error", err)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, "", "Path to configuration file (YAML format)")
	flags.String(flagEndpoint, "", "Registry API base URL (overrides registry.endpoint)")
	flags.String(flagInterval, "", "Auto-refresh interval, e.g. 5s (overrides refresh.interval)")
	for _, name := range []string{flagConfig, flagEndpoint, flagInterval} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			slog.Error("Error binding flag", "flag", name, "error", err)
		}
	}

	rootCmd.AddCommand(
		newListCmd(v),
		newWatchCmd(v),
		newRegisterCmd(v),
		newDeregisterCmd(v),
		newHeartbeatCmd(v),
		newRateLimitCmd(v),
		newVirtualDomainCmd(v),
		newStatusCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to read format flag: %w", err)
			}

			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info as JSON: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "regconsole %s (commit %s, built %s, %s, %s)\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			return err
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}
