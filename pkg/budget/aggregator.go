// Package budget derives utilization, spending history, and projections for
// a client's funding plan. All computation here is pure: inputs in, values
// out, no I/O and no clock access beyond the explicitly passed date.
package budget

import (
	"fmt"
	"sort"

	"github.com/practicehq/planbudget/pkg/model"
)

// Utilization thresholds for item classification. Both high and low
// utilization warn: a near-unused item is as notable as an over-used one.
const (
	criticalAbove = 0.90
	warnAbove     = 0.75
	warnBelow     = 0.30
)

// AggregateUsage maps session product usage onto budget items. It returns
// each item annotated with consumed quantities, the chronological list of
// spending events, and the product codes that matched no known item (for
// data-quality logging by the caller; never an error).
//
// Only sessions with status "completed" contribute. Matching is by exact
// item code. Empty inputs produce empty, well-formed outputs.
func AggregateUsage(items []model.BudgetItem, sessions []model.SessionRecord) ([]model.ItemUsage, []model.SpendingEvent, []string) {
	byCode := make(map[string]int, len(items))
	for i, item := range items {
		byCode[item.ItemCode] = i
	}

	used := make([]float64, len(items))
	var events []model.SpendingEvent
	var unmatched []string
	seen := make(map[string]struct{})

	for _, session := range sessions {
		if session.Status != model.SessionCompleted {
			continue
		}
		for _, product := range session.Products {
			idx, ok := byCode[product.ItemCode]
			if !ok {
				if _, dup := seen[product.ItemCode]; !dup {
					seen[product.ItemCode] = struct{}{}
					unmatched = append(unmatched, product.ItemCode)
				}
				continue
			}

			item := items[idx]
			qty := float64(product.Quantity)
			used[idx] += qty

			price := float64(item.UnitPrice)
			if price == 0 && product.UnitPrice > 0 {
				price = float64(product.UnitPrice)
			}

			events = append(events, model.SpendingEvent{
				Date:        session.SessionDate,
				Amount:      price * qty,
				Description: eventDescription(item, qty),
				ItemCode:    item.ItemCode,
				SessionID:   session.ID,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].ItemCode < events[j].ItemCode
	})

	usage := make([]model.ItemUsage, len(items))
	for i, item := range items {
		u := model.ItemUsage{
			BudgetItem:   item,
			UsedQuantity: used[i],
		}

		u.RemainingQuantity = float64(item.Quantity) - u.UsedQuantity
		if u.RemainingQuantity < 0 {
			u.RemainingQuantity = 0
		}

		// Not clamped to 1: a rate above 1 is a meaningful over-utilization
		// signal even though remaining quantity bottoms out at zero.
		if item.Quantity > 0 {
			u.UtilizationRate = u.UsedQuantity / float64(item.Quantity)
		}

		u.Status = classify(u.UtilizationRate)
		usage[i] = u
	}

	return usage, events, unmatched
}

func classify(rate float64) model.ItemStatus {
	switch {
	case rate > criticalAbove:
		return model.ItemCritical
	case rate > warnAbove || rate < warnBelow:
		return model.ItemWarning
	default:
		return model.ItemNormal
	}
}

func eventDescription(item model.BudgetItem, qty float64) string {
	label := item.Description
	if label == "" {
		label = item.ItemCode
	}
	return fmt.Sprintf("%g x %s", qty, label)
}
