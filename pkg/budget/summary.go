package budget

import (
	"math"

	"github.com/practicehq/planbudget/pkg/model"
)

const (
	// defaultHorizonDays stands in for totalDays when a plan is misconfigured
	// (end on or before start), strictly as a division-safety floor. The
	// reported dates are never altered.
	defaultHorizonDays = 180

	// maxDepletionDays caps the depletion projection so a low spend rate
	// cannot produce a nonsensical far-future date.
	maxDepletionDays = 365
)

// CalculateSummary derives the scalar facts of a budget from aggregated item
// usage and the plan envelope, evaluated as of the given date.
//
// Totals are always recomputed from items, never taken from
// settings.TotalFunds; the two drift in practice and the item sum is the
// single source of truth.
func CalculateSummary(items []model.ItemUsage, settings model.BudgetSettings, today model.Date) model.BudgetScalars {
	var s model.BudgetScalars

	for _, item := range items {
		s.TotalBudget += item.TotalCost()
		s.UsedBudget += item.UsedCost()
	}
	s.RemainingBudget = s.TotalBudget - s.UsedBudget
	if s.TotalBudget > 0 {
		s.UtilizationPercentage = s.UsedBudget / s.TotalBudget * 100
	}
	s.PlannedFunds = float64(settings.TotalFunds)

	s.TotalDays = planDays(settings.StartDate, settings.EndDate)
	s.DaysElapsed = clampInt(elapsedDays(settings.StartDate, today), 0, s.TotalDays)
	s.RemainingDays = s.TotalDays - s.DaysElapsed

	totalDaysSafe := s.TotalDays
	if totalDaysSafe <= 0 {
		totalDaysSafe = defaultHorizonDays
	}
	s.DailyBudget = s.TotalBudget / float64(totalDaysSafe)

	if s.DaysElapsed > 0 {
		s.DailySpendRate = s.UsedBudget / float64(s.DaysElapsed)
	}

	s.DaysUntilDepletion, s.ProjectedEndDate, s.ProjectedOverspend = projections(s, settings, today)
	return s
}

// projections computes the advisory depletion and overspend figures. Any
// arithmetic failure degrades to nils; projections are never load-bearing.
func projections(s model.BudgetScalars, settings model.BudgetSettings, today model.Date) (depletionDays *int, endDate *model.Date, overspend *float64) {
	defer func() {
		if recover() != nil {
			depletionDays, endDate, overspend = nil, nil, nil
		}
	}()

	if !finite(s.DailySpendRate) || !finite(s.RemainingBudget) || today.IsZero() {
		return nil, nil, nil
	}

	if s.DailySpendRate > 0 && s.RemainingBudget > 0 && !settings.EndDate.IsZero() {
		days := int(math.Floor(s.RemainingBudget / s.DailySpendRate))
		if days > maxDepletionDays {
			days = maxDepletionDays
		}
		projected := today.AddDays(days)
		// Only meaningful when the budget runs out before the plan does.
		if projected.Before(settings.EndDate) {
			depletionDays = &days
			endDate = &projected
		}
	}

	if s.DailySpendRate > s.DailyBudget {
		projectedTotal := s.UsedBudget + s.DailySpendRate*float64(s.RemainingDays)
		if finite(projectedTotal) && projectedTotal > s.TotalBudget {
			over := projectedTotal - s.TotalBudget
			overspend = &over
		}
	}

	return depletionDays, endDate, overspend
}

// planDays is the whole-day span of the plan, zero when either date is
// missing or the window is inverted.
func planDays(start, end model.Date) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	days := start.DaysUntil(end)
	if days < 0 {
		return 0
	}
	return days
}

func elapsedDays(start, today model.Date) int {
	if start.IsZero() || today.IsZero() {
		return 0
	}
	return start.DaysUntil(today)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
