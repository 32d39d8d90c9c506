package app

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/stacklok/registry-console/internal/mirror"
	"github.com/stacklok/registry-console/internal/notify"
	"github.com/stacklok/registry-console/internal/registry"
	"github.com/stacklok/registry-console/internal/status"
	"github.com/stacklok/registry-console/internal/sync/coordinator"
)

var severityStyles = map[notify.Severity]lipgloss.Style{
	notify.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	notify.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	notify.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	notify.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

var statusStyles = map[bool]lipgloss.Style{
	true:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	false: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
}

// renderNotification formats n as "[severity] message" coloured by severity
func renderNotification(n notify.Notification) string {
	style, ok := severityStyles[n.Severity]
	if !ok {
		style = severityStyles[notify.SeverityInfo]
	}
	return style.Render(fmt.Sprintf("[%s] %s", n.Severity, n.Message))
}

// renderStatistics writes the summary line of the mirror
func renderStatistics(w io.Writer, stats mirror.Statistics) error {
	_, err := fmt.Fprintf(w, "Services: %d  Online: %d  Instances: %d  Avg response: %dms  Updated: %s\n",
		stats.TotalServices,
		stats.OnlineServices,
		stats.TotalInstances,
		stats.AvgResponseTime,
		registry.FormatDateTime(stats.LastUpdateTime),
	)
	return err
}

// renderSchedulerLine writes the auto-refresh state and the last refresh outcome
func renderSchedulerLine(w io.Writer, state coordinator.State, interval time.Duration, st status.SyncStatus) error {
	line := fmt.Sprintf("Auto refresh: %s (every %s)", state, interval)
	if st.Phase != "" {
		line += fmt.Sprintf("  Last refresh: %s", st.Phase)
		if !st.Healthy() && st.Message != "" {
			line += fmt.Sprintf(" (%s)", st.Message)
		}
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// renderServices writes shown as a table. all is the whole mirror and is used
// for the per-service instance counts and the newest versions.
func renderServices(w io.Writer, shown, all []registry.ServiceInstance, now time.Time) error {
	counts := make(map[string]int, len(all))
	for i := range all {
		counts[all[i].ServiceName]++
	}
	latest := mirror.LatestVersions(all)

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Version", "Address", "Status", "Heartbeat", "Instances", "Domain", "Rate limit")

	for i := range shown {
		inst := shown[i]

		version := inst.ServiceVersion
		if mirror.IsOutdated(inst, latest) {
			version += " (outdated)"
		}

		rateLimit := "off"
		if inst.RateLimitEnabled {
			rateLimit = fmt.Sprintf("%d/s", inst.MaxRequestsPerSecond)
		}

		if err := table.Append(
			strconv.FormatInt(inst.ID, 10),
			inst.ServiceName,
			version,
			inst.Address(),
			statusStyles[inst.IsUp()].Render(inst.Status),
			registry.HeartbeatAge(now, inst.LastHeartbeat.Time),
			strconv.Itoa(counts[inst.ServiceName]),
			inst.Domain(),
			rateLimit,
		); err != nil {
			return fmt.Errorf("failed to render service %d: %w", inst.ID, err)
		}
	}

	return table.Render()
}
