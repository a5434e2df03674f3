package alerts

import "context"

// AlertLevel indicates the severity of a plan utilization alert.
type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"  // Approaching the configured threshold
	AlertCritical AlertLevel = "critical" // At or near full utilization
	AlertExceeded AlertLevel = "exceeded" // Budget fully consumed or overspent
)

// Alert represents a funding-plan utilization notification.
type Alert struct {
	Level          AlertLevel `json:"level"`
	ClientID       string     `json:"client_id"`
	PlanStart      string     `json:"plan_start"`
	PlanEnd        string     `json:"plan_end"`
	TotalBudget    float64    `json:"total_budget"`
	UsedBudget     float64    `json:"used_budget"`
	UtilizationPct float64    `json:"utilization_pct"`
	ThresholdPct   float64    `json:"threshold_pct"`
	CriticalItems  []string   `json:"critical_items,omitempty"`
	Message        string     `json:"message"`
}

// Notifier sends alerts to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}
