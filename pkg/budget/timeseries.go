package budget

import (
	"github.com/practicehq/planbudget/pkg/model"
)

// BuildTimeseries produces one point per calendar day from start to end
// inclusive: actual spending per day, a linear target pace, running
// cumulatives, and for days after today a projection extrapolated from the
// historical average daily spend.
//
// An inverted or missing window yields an empty series. The function is
// deterministic: identical inputs give identical output.
func BuildTimeseries(events []model.SpendingEvent, start, end model.Date, totalBudget float64, today model.Date) []model.DailyPoint {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil
	}

	numDays := start.DaysUntil(end) + 1

	perDay := make(map[string]float64, len(events))
	for _, ev := range events {
		if ev.Date.IsZero() || ev.Date.Before(start) || ev.Date.After(end) {
			continue
		}
		perDay[ev.Date.String()] += ev.Amount
	}

	// Even distribution across every day of the plan, so the target
	// cumulative lands exactly on the total budget at the final day.
	target := totalBudget / float64(numDays)

	// Historical average over the elapsed portion of the window, floored at
	// one day to keep the division defined when the plan starts today.
	var actualSum float64
	elapsed := 0
	for d := start; !d.After(end) && !d.After(today); d = d.AddDays(1) {
		actualSum += perDay[d.String()]
		elapsed++
	}
	if elapsed < 1 {
		elapsed = 1
	}
	avgDaily := actualSum / float64(elapsed)

	points := make([]model.DailyPoint, 0, numDays)
	var cumActual, cumTarget, cumProjected float64
	projecting := false

	for d := start; !d.After(end); d = d.AddDays(1) {
		actual := perDay[d.String()]
		cumActual += actual
		cumTarget += target

		p := model.DailyPoint{
			Date:             d,
			MonthLabel:       d.MonthLabel(),
			ActualSpending:   actual,
			TargetSpending:   target,
			CumulativeActual: cumActual,
			CumulativeTarget: cumTarget,
		}

		if d.After(today) {
			if !projecting {
				// Projection continues from the last actual cumulative value.
				cumProjected = cumActual - actual
				projecting = true
			}
			cumProjected += avgDaily
			projected := avgDaily
			running := cumProjected
			p.ProjectedSpending = &projected
			p.CumulativeProjected = &running
		}

		points = append(points, p)
	}

	return points
}
