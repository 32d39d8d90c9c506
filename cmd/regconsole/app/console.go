package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	consoleapp "github.com/stacklok/registry-console/internal/app"
	"github.com/stacklok/registry-console/internal/config"
	"github.com/stacklok/registry-console/internal/notify"
	"github.com/stacklok/registry-console/internal/registry"
	pkgsync "github.com/stacklok/registry-console/internal/sync"
)

// loadConfig reads the configuration file, if any, and applies flag and
// environment overrides
func loadConfig(v *viper.Viper) (*config.Config, error) {
	var opts []config.Option
	if path := v.GetString(flagConfig); path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}

	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if endpoint := v.GetString(flagEndpoint); endpoint != "" {
		cfg.Registry.Endpoint = endpoint
	}
	if interval := v.GetString(flagInterval); interval != "" {
		cfg.Refresh.Interval = interval
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newConsole loads the configuration and builds the console state
func newConsole(ctx context.Context, v *viper.Viper, opts ...consoleapp.Option) (*consoleapp.App, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	return consoleapp.New(ctx, append([]consoleapp.Option{consoleapp.WithConfig(cfg)}, opts...)...)
}

// closeConsole releases a and joins its error with err
func closeConsole(a *consoleapp.App, err error) error {
	if closeErr := a.Close(context.Background()); closeErr != nil && err == nil {
		return closeErr
	}
	return err
}

// printNotifications writes every shown notification of a to the command's
// streams: warnings and errors to stderr, the rest to stdout
func printNotifications(cmd *cobra.Command, a *consoleapp.App) {
	var mu sync.Mutex
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	a.OnNotification(func(n notify.Notification) {
		if !n.Visible {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		w := out
		if n.Severity == notify.SeverityWarning || n.Severity == notify.SeverityError {
			w = errOut
		}
		_, _ = fmt.Fprintln(w, renderNotification(n))
	})
}

// promptConfirmer asks on out and reads a y/N answer from in
func promptConfirmer(in io.Reader, out io.Writer) pkgsync.Confirmer {
	reader := bufio.NewReader(in)
	return pkgsync.ConfirmFunc(func(_ context.Context, prompt string) bool {
		_, _ = fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}

// lookupService refreshes the mirror silently and returns the instance whose
// ID is arg
func lookupService(ctx context.Context, a *consoleapp.App, arg string) (registry.ServiceInstance, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return registry.ServiceInstance{}, fmt.Errorf("invalid service ID %q", arg)
	}

	if err := a.SyncManager().Refresh(ctx, true); err != nil {
		return registry.ServiceInstance{}, refreshError(err)
	}

	inst, ok := a.Service(id)
	if !ok {
		return registry.ServiceInstance{}, fmt.Errorf("service %d not found", id)
	}
	return inst, nil
}

// refreshError prefixes a failed silent refresh with its user message
func refreshError(err error) error {
	return fmt.Errorf("%s: %w", registry.Classify(err).UserMessage(pkgsync.MessageRefreshFailed), err)
}
