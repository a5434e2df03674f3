package model

import "time"

// SessionStatus is the lifecycle state of a therapy session record.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
	SessionNoShow    SessionStatus = "no_show"
)

// ItemStatus classifies a budget item's utilization level.
type ItemStatus string

const (
	ItemNormal   ItemStatus = "normal"
	ItemWarning  ItemStatus = "warning"
	ItemCritical ItemStatus = "critical"
)

// BudgetItem is one allocated line of spend in a client's funding plan.
type BudgetItem struct {
	ID          string   `json:"id" db:"id"`
	ClientID    string   `json:"client_id" db:"client_id"`
	ItemCode    string   `json:"item_code" db:"item_code"`
	Description string   `json:"description" db:"description"`
	Category    string   `json:"category,omitempty" db:"category"`
	UnitPrice   Amount   `json:"unit_price" db:"unit_price"`
	Quantity    Quantity `json:"quantity" db:"quantity"`

	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// TotalCost is the allocated spend for this line.
func (b BudgetItem) TotalCost() float64 {
	return float64(b.UnitPrice) * float64(b.Quantity)
}

// ItemUsage is a BudgetItem annotated with consumption derived from
// completed sessions. Produced by the aggregator, never stored.
type ItemUsage struct {
	BudgetItem

	UsedQuantity      float64    `json:"used_quantity"`
	RemainingQuantity float64    `json:"remaining_quantity"`
	UtilizationRate   float64    `json:"utilization_rate"`
	Status            ItemStatus `json:"status"`
}

// UsedCost is the consumed spend for this line.
func (u ItemUsage) UsedCost() float64 {
	return float64(u.UnitPrice) * u.UsedQuantity
}

// BudgetSettings is the date-bounded funding envelope for one client's
// active plan.
type BudgetSettings struct {
	ID         string `json:"id" db:"id"`
	ClientID   string `json:"client_id" db:"client_id"`
	TotalFunds Amount `json:"total_funds,omitempty" db:"total_funds"`
	StartDate  Date   `json:"start_date" db:"start_date"`
	EndDate    Date   `json:"end_date" db:"end_date"`
	IsActive   bool   `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// ProductUsage is one line of budget consumption attached to a session.
type ProductUsage struct {
	ItemCode string   `json:"item_code"`
	Quantity Quantity `json:"quantity"`
	// UnitPrice is only consulted when the matched budget item carries no price.
	UnitPrice Amount `json:"unit_price,omitempty"`
}

// SessionRecord is a therapy session with its attached product usage.
// Only completed sessions generate spending events.
type SessionRecord struct {
	ID          string         `json:"id" db:"id"`
	ClientID    string         `json:"client_id" db:"client_id"`
	Status      SessionStatus  `json:"status" db:"status"`
	SessionDate Date           `json:"session_date" db:"session_date"`
	Notes       string         `json:"notes,omitempty" db:"notes"`
	Products    []ProductUsage `json:"products,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
}

// SpendingEvent is a derived fact: one session's consumption of one budget
// item on one date. Computed fresh on every query, never persisted.
type SpendingEvent struct {
	Date        Date    `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	ItemCode    string  `json:"item_code"`
	SessionID   string  `json:"session_id,omitempty"`
}

// BudgetScalars holds the scalar facts of a budget: totals, rates, and the
// advisory projections. Projection fields are nil when not applicable.
type BudgetScalars struct {
	TotalBudget           float64 `json:"total_budget"`
	UsedBudget            float64 `json:"used_budget"`
	RemainingBudget       float64 `json:"remaining_budget"`
	UtilizationPercentage float64 `json:"utilization_percentage"`

	// PlannedFunds echoes settings.TotalFunds for display; the totals above
	// are always recomputed from items.
	PlannedFunds float64 `json:"planned_funds,omitempty"`

	TotalDays      int     `json:"total_days"`
	DaysElapsed    int     `json:"days_elapsed"`
	RemainingDays  int     `json:"remaining_days"`
	DailyBudget    float64 `json:"daily_budget"`
	DailySpendRate float64 `json:"daily_spend_rate"`

	DaysUntilDepletion *int     `json:"days_until_depletion,omitempty"`
	ProjectedEndDate   *Date    `json:"projected_end_date,omitempty"`
	ProjectedOverspend *float64 `json:"projected_overspend,omitempty"`
}

// DailyPoint is one day of the actual-vs-target-vs-projected series.
// Projected fields are nil for days on or before the evaluation date.
type DailyPoint struct {
	Date       Date   `json:"date"`
	MonthLabel string `json:"month"`

	ActualSpending   float64 `json:"actual_spending"`
	TargetSpending   float64 `json:"target_spending"`
	CumulativeActual float64 `json:"cumulative_actual"`
	CumulativeTarget float64 `json:"cumulative_target"`

	ProjectedSpending   *float64 `json:"projected_spending,omitempty"`
	CumulativeProjected *float64 `json:"cumulative_projected,omitempty"`
}

// BudgetSummary is the full computed view of a client's plan: the scalar
// facts, the annotated item list, the spending-event log, and the daily
// series. No identity; recomputed on every request.
type BudgetSummary struct {
	ClientID string `json:"client_id"`
	AsOf     Date   `json:"as_of"`

	Settings BudgetSettings `json:"settings"`
	Scalars  BudgetScalars  `json:"scalars"`

	Items      []ItemUsage     `json:"items"`
	Events     []SpendingEvent `json:"spending_events"`
	Timeseries []DailyPoint    `json:"timeseries"`
}
