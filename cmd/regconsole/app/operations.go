package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	consoleapp "github.com/stacklok/registry-console/internal/app"
	"github.com/stacklok/registry-console/internal/editor"
	pkgsync "github.com/stacklok/registry-console/internal/sync"
)

// ErrNotified marks a failure that was already printed as a notification
var ErrNotified = errors.New("operation failed")

// runOperation builds a console that prints its notifications, runs op
// against it and releases it
func runOperation(
	cmd *cobra.Command,
	v *viper.Viper,
	op func(ctx context.Context, a *consoleapp.App) error,
	opts ...consoleapp.Option,
) (err error) {
	ctx := cmd.Context()

	a, err := newConsole(ctx, v, opts...)
	if err != nil {
		return err
	}
	defer func() { err = closeConsole(a, err) }()

	printNotifications(cmd, a)
	return op(ctx, a)
}

// notified wraps an operation error that the manager already surfaced
func notified(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNotified, err)
}

func newRegisterCmd(v *viper.Viper) *cobra.Command {
	var form editor.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new service instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOperation(cmd, v, func(ctx context.Context, a *consoleapp.App) error {
				a.Editor().OpenRegister()
				a.Editor().SetRegisterForm(form)
				return notified(a.SyncManager().Register(ctx, form))
			})
		},
	}

	cmd.Flags().StringVar(&form.ServiceName, "name", "", "Service name")
	cmd.Flags().StringVar(&form.ServiceVersion, "version", "", "Service version")
	cmd.Flags().StringVar(&form.IP, "ip", "", "IPv4 address of the instance")
	cmd.Flags().StringVar(&form.Port, "port", "", "Port of the instance (1-65535)")

	return cmd
}

func newDeregisterCmd(v *viper.Viper) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "deregister ID",
		Short: "Deregister a service instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmer := promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirmer = pkgsync.ConfirmFunc(func(context.Context, string) bool { return true })
			}

			return runOperation(cmd, v, func(ctx context.Context, a *consoleapp.App) error {
				inst, err := lookupService(ctx, a, args[0])
				if err != nil {
					return err
				}
				return notified(a.SyncManager().Deregister(ctx, inst))
			}, consoleapp.WithConfirmer(confirmer))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Deregister without asking for confirmation")

	return cmd
}

func newHeartbeatCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "heartbeat ID",
		Short: "Renew the heartbeat of a service instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, v, func(ctx context.Context, a *consoleapp.App) error {
				inst, err := lookupService(ctx, a, args[0])
				if err != nil {
					return err
				}
				return notified(a.SyncManager().Heartbeat(ctx, inst))
			})
		},
	}
}

func newRateLimitCmd(v *viper.Viper) *cobra.Command {
	var (
		enabled bool
		maxRPS  int
		message string
	)

	cmd := &cobra.Command{
		Use:   "rate-limit ID",
		Short: "Configure rate limiting of a service instance",
		Long: `Configure rate limiting of a service instance.

Unset flags keep the current setting of the instance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			return runOperation(cmd, v, func(ctx context.Context, a *consoleapp.App) error {
				inst, err := lookupService(ctx, a, args[0])
				if err != nil {
					return err
				}

				ed := a.Editor()
				ed.OpenRateLimit(inst)
				_, draft, _ := ed.RateLimitTarget()
				if flags.Changed("enabled") {
					draft.Enabled = enabled
				}
				if flags.Changed("max") {
					draft.MaxRequestsPerSecond = maxRPS
				}
				if flags.Changed("message") {
					draft.ErrorMessage = message
				}
				ed.SetRateLimitDraft(draft)

				return notified(a.SyncManager().SaveRateLimit(ctx))
			})
		},
	}

	cmd.Flags().BoolVar(&enabled, "enabled", false, "Enable rate limiting")
	cmd.Flags().IntVar(&maxRPS, "max", 0, "Maximum requests per second")
	cmd.Flags().StringVar(&message, "message", "", "Error message returned to rate-limited callers")

	return cmd
}

func newVirtualDomainCmd(v *viper.Viper) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "virtual-domain ID [DOMAIN]",
		Short: "Set or remove the virtual domain of a service instance",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && !remove {
				return errors.New("a domain or --clear is required")
			}
			if len(args) == 2 && remove {
				return errors.New("a domain and --clear are mutually exclusive")
			}

			return runOperation(cmd, v, func(ctx context.Context, a *consoleapp.App) error {
				inst, err := lookupService(ctx, a, args[0])
				if err != nil {
					return err
				}

				var domain string
				if len(args) == 2 {
					domain = args[1]
				}

				ed := a.Editor()
				ed.OpenVirtualDomain(inst)
				ed.SetVirtualDomainDraft(domain)
				return notified(a.SyncManager().SaveVirtualDomain(ctx))
			})
		},
	}

	cmd.Flags().BoolVar(&remove, "clear", false, "Remove the virtual domain")

	return cmd
}
