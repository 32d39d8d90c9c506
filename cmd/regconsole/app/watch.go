package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	consoleapp "github.com/stacklok/registry-console/internal/app"
	"github.com/stacklok/registry-console/internal/mirror"
	"github.com/stacklok/registry-console/internal/status"
	"github.com/stacklok/registry-console/internal/sync/coordinator"
)

// clearScreen moves the cursor home and clears the terminal
const clearScreen = "\033[H\033[2J"

const (
	metricsReadHeaderTimeout = 10 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	var statusFile string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the service list up to date until interrupted",
		Long: `Refresh the service list once, then keep refreshing it in the background
and redraw it on every change. Notifications are printed as they arrive.
When telemetry.metrics.prometheus is enabled the mirror metrics are served
for scraping.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var opts []consoleapp.Option
			if statusFile != "" {
				opts = append(opts, consoleapp.WithStatusPersistence(status.NewFileStatusPersistence(statusFile)))
			}
			return runWatch(ctx, cmd, v, opts...)
		},
	}

	cmd.Flags().StringVar(&statusFile, "status-file", "",
		"Write the outcome of every refresh to this file (read it with 'regconsole status')")

	return cmd
}

// runWatch drives the console until ctx is done
func runWatch(ctx context.Context, cmd *cobra.Command, v *viper.Viper, opts ...consoleapp.Option) (err error) {
	a, err := newConsole(ctx, v, opts...)
	if err != nil {
		return err
	}
	defer func() { err = closeConsole(a, err) }()

	changed := make(chan struct{}, 1)
	a.OnMirrorChange(func(mirror.Statistics) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	printNotifications(cmd, a)

	// A failed initial refresh was notified; keep watching so the scheduler can recover
	if err := a.Mount(ctx); err != nil {
		slog.Warn("Initial refresh failed", "error", err)
	}
	if a.SchedulerState() == coordinator.StateStopped {
		a.ToggleAutoRefresh(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out := cmd.OutOrStdout()
		redraw := isTerminal(out)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-changed:
				if redraw {
					_, _ = fmt.Fprint(out, clearScreen)
				}
				if err := renderWatchFrame(out, a); err != nil {
					return err
				}
			}
		}
	})

	if handler, address, ok := a.Telemetry().MetricsHandler(); ok {
		g.Go(func() error {
			return serveMetrics(gctx, address, handler)
		})
	}

	return g.Wait()
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderWatchFrame writes the scheduler state, statistics and filtered list
func renderWatchFrame(w io.Writer, a *consoleapp.App) error {
	if err := renderSchedulerLine(w, a.SchedulerState(), a.Config().Refresh.GetInterval(), a.SyncStatus()); err != nil {
		return err
	}
	if err := renderStatistics(w, a.Statistics()); err != nil {
		return err
	}
	return renderServices(w, a.Filtered(), a.Services(), time.Now())
}

// serveMetrics serves the Prometheus scrape endpoint on address until ctx is done
func serveMetrics(ctx context.Context, address string, handler http.Handler) error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", handler)

	server := &http.Server{
		Addr:              address,
		Handler:           r,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Serving metrics", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server failed: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown metrics server: %w", err)
	}
	return nil
}
