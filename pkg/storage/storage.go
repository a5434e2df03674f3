package storage

import (
	"context"
	"errors"

	"github.com/practicehq/planbudget/pkg/model"
)

// ErrNotFound is returned when a requested record does not exist. For budget
// settings this means the client has no active plan; callers treat it as a
// signal, not a failure.
var ErrNotFound = errors.New("not found")

// Storage defines the persistence layer for budget items, plan settings,
// and session records.
type Storage interface {
	// UpsertBudgetItem creates or updates a budget item, keyed by
	// client ID and item code.
	UpsertBudgetItem(ctx context.Context, item *model.BudgetItem) error

	// ListBudgetItems returns all budget items for a client, ordered by
	// item code.
	ListBudgetItems(ctx context.Context, clientID string) ([]model.BudgetItem, error)

	// DeleteBudgetItem removes a budget item. Historical session products
	// referencing the code are left in place.
	DeleteBudgetItem(ctx context.Context, clientID, itemCode string) error

	// SetBudgetSettings creates or replaces the plan envelope for a client.
	// Setting an active plan deactivates any previous active plan.
	SetBudgetSettings(ctx context.Context, settings *model.BudgetSettings) error

	// GetBudgetSettings returns the client's active plan, or ErrNotFound
	// when none exists.
	GetBudgetSettings(ctx context.Context, clientID string) (*model.BudgetSettings, error)

	// RecordSession persists a session record with its product usage.
	RecordSession(ctx context.Context, session *model.SessionRecord) error

	// ListSessions returns all session records for a client with nested
	// products, most recent first.
	ListSessions(ctx context.Context, clientID string) ([]model.SessionRecord, error)

	// Close releases resources.
	Close() error
}
