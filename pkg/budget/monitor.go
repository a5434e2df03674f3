package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/practicehq/planbudget/pkg/alerts"
	"github.com/practicehq/planbudget/pkg/model"
)

// Monitor evaluates computed summaries against utilization thresholds and
// dispatches alerts.
type Monitor struct {
	notifiers    []alerts.Notifier
	warnAbovePct float64
	logger       *slog.Logger
}

// NewMonitor creates a monitor. warnAbovePct is the utilization percentage
// at which a warning alert fires; 95% and 100% escalate regardless.
func NewMonitor(notifiers []alerts.Notifier, warnAbovePct float64, logger *slog.Logger) *Monitor {
	return &Monitor{
		notifiers:    notifiers,
		warnAbovePct: warnAbovePct,
		logger:       logger,
	}
}

// Check evaluates a summary and dispatches alerts if a threshold is crossed.
// Notifier failures are logged, never returned; alerting is advisory.
func (m *Monitor) Check(ctx context.Context, summary *model.BudgetSummary) {
	if summary == nil || summary.Scalars.TotalBudget <= 0 {
		return
	}

	pct := summary.Scalars.UtilizationPercentage

	var level alerts.AlertLevel
	switch {
	case pct >= 100:
		level = alerts.AlertExceeded
	case pct >= 95:
		level = alerts.AlertCritical
	case pct >= m.warnAbovePct:
		level = alerts.AlertWarning
	default:
		return // Under threshold, no alert needed
	}

	var criticalItems []string
	for _, item := range summary.Items {
		if item.Status == model.ItemCritical {
			criticalItems = append(criticalItems, item.ItemCode)
		}
	}

	alert := alerts.Alert{
		Level:          level,
		ClientID:       summary.ClientID,
		PlanStart:      summary.Settings.StartDate.String(),
		PlanEnd:        summary.Settings.EndDate.String(),
		TotalBudget:    summary.Scalars.TotalBudget,
		UsedBudget:     summary.Scalars.UsedBudget,
		UtilizationPct: pct,
		ThresholdPct:   m.warnAbovePct,
		CriticalItems:  criticalItems,
		Message: fmt.Sprintf("Plan for client %s at %.1f%% ($%.2f / $%.2f)",
			summary.ClientID, pct, summary.Scalars.UsedBudget, summary.Scalars.TotalBudget),
	}

	m.logger.Warn("plan utilization threshold crossed",
		"client", summary.ClientID,
		"level", level,
		"pct", pct,
		"used", summary.Scalars.UsedBudget,
		"total", summary.Scalars.TotalBudget,
	)

	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, alert); err != nil {
			m.logger.Error("send alert failed",
				"notifier", notifier.Name(),
				"client", summary.ClientID,
				"error", err,
			)
		}
	}
}
