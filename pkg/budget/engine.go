package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/practicehq/planbudget/pkg/model"
	"github.com/practicehq/planbudget/pkg/storage"
)

// fundsDriftTolerance is the relative divergence between the configured plan
// funds and the computed item total above which a drift warning is logged.
const fundsDriftTolerance = 0.01

// Engine loads a client's plan data from storage and runs the pure
// calculation pipeline over it.
type Engine struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewEngine creates a budget engine.
func NewEngine(store storage.Storage, logger *slog.Logger) *Engine {
	return &Engine{storage: store, logger: logger}
}

// GetBudgetSummary computes the full budget summary for a client as of the
// given date. A client with no active plan yields (nil, nil) — a signal,
// not an error. Data-quality issues are logged and computation continues.
func (e *Engine) GetBudgetSummary(ctx context.Context, clientID string, today model.Date) (*model.BudgetSummary, error) {
	settings, err := e.storage.GetBudgetSettings(ctx, clientID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load budget settings: %w", err)
	}

	items, err := e.storage.ListBudgetItems(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load budget items: %w", err)
	}

	sessions, err := e.storage.ListSessions(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	usage, events, unmatched := AggregateUsage(items, sessions)
	if len(unmatched) > 0 {
		e.logger.Warn("session products reference unknown item codes",
			"client", clientID,
			"codes", unmatched,
		)
	}

	scalars := CalculateSummary(usage, *settings, today)

	if planned := float64(settings.TotalFunds); planned > 0 {
		drift := math.Abs(scalars.TotalBudget-planned) / planned
		if drift > fundsDriftTolerance {
			e.logger.Warn("plan funds diverge from item total",
				"client", clientID,
				"planned_funds", planned,
				"item_total", scalars.TotalBudget,
			)
		}
	}

	timeseries := BuildTimeseries(events, settings.StartDate, settings.EndDate, scalars.TotalBudget, today)

	return &model.BudgetSummary{
		ClientID:   clientID,
		AsOf:       today,
		Settings:   *settings,
		Scalars:    scalars,
		Items:      usage,
		Events:     events,
		Timeseries: timeseries,
	}, nil
}
