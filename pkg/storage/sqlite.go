package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/practicehq/planbudget/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) UpsertBudgetItem(ctx context.Context, item *model.BudgetItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budget_items (id, client_id, item_code, description, category, unit_price, quantity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(client_id, item_code) DO UPDATE SET
			description = excluded.description,
			category    = excluded.category,
			unit_price  = excluded.unit_price,
			quantity    = excluded.quantity,
			updated_at  = excluded.updated_at`,
		item.ID, item.ClientID, item.ItemCode, item.Description, item.Category,
		float64(item.UnitPrice), float64(item.Quantity), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert budget item: %w", err)
	}
	return nil
}

func (s *SQLite) ListBudgetItems(ctx context.Context, clientID string) ([]model.BudgetItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, item_code, description, category, unit_price, quantity, created_at, updated_at
		 FROM budget_items WHERE client_id = ? ORDER BY item_code`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("query budget items: %w", err)
	}
	defer rows.Close()

	var items []model.BudgetItem
	for rows.Next() {
		var item model.BudgetItem
		var price, qty float64
		if err := rows.Scan(&item.ID, &item.ClientID, &item.ItemCode, &item.Description,
			&item.Category, &price, &qty, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget item: %w", err)
		}
		item.UnitPrice = model.Amount(price)
		item.Quantity = model.Quantity(qty)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLite) DeleteBudgetItem(ctx context.Context, clientID, itemCode string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM budget_items WHERE client_id = ? AND item_code = ?",
		clientID, itemCode,
	)
	if err != nil {
		return fmt.Errorf("delete budget item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) SetBudgetSettings(ctx context.Context, settings *model.BudgetSettings) error {
	if settings.ID == "" {
		settings.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings tx: %w", err)
	}

	if settings.IsActive {
		// One active plan per client.
		if _, err := tx.ExecContext(ctx,
			"UPDATE budget_settings SET is_active = 0, updated_at = ? WHERE client_id = ? AND is_active = 1 AND id <> ?",
			now, settings.ClientID, settings.ID,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("deactivate previous plan: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO budget_settings (id, client_id, total_funds, start_date, end_date, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			total_funds = excluded.total_funds,
			start_date  = excluded.start_date,
			end_date    = excluded.end_date,
			is_active   = excluded.is_active,
			updated_at  = excluded.updated_at`,
		settings.ID, settings.ClientID, float64(settings.TotalFunds),
		settings.StartDate, settings.EndDate, settings.IsActive,
		settings.CreatedAt, settings.UpdatedAt,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert budget settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings tx: %w", err)
	}
	return nil
}

func (s *SQLite) GetBudgetSettings(ctx context.Context, clientID string) (*model.BudgetSettings, error) {
	var settings model.BudgetSettings
	var funds float64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, client_id, total_funds, start_date, end_date, is_active, created_at, updated_at
		 FROM budget_settings
		 WHERE client_id = ? AND is_active = 1
		 ORDER BY updated_at DESC LIMIT 1`,
		clientID,
	).Scan(&settings.ID, &settings.ClientID, &funds, &settings.StartDate,
		&settings.EndDate, &settings.IsActive, &settings.CreatedAt, &settings.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get budget settings: %w", err)
	}
	settings.TotalFunds = model.Amount(funds)
	return &settings, nil
}

func (s *SQLite) RecordSession(ctx context.Context, session *model.SessionRecord) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.Status == "" {
		session.Status = model.SessionScheduled
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, client_id, status, session_date, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID, session.ClientID, string(session.Status),
		session.SessionDate, session.Notes, session.CreatedAt,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert session: %w", err)
	}

	for _, product := range session.Products {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_products (id, session_id, item_code, quantity, unit_price)
			 VALUES (?, ?, ?, ?, ?)`,
			uuid.New().String(), session.ID, product.ItemCode,
			float64(product.Quantity), float64(product.UnitPrice),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert session product: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session tx: %w", err)
	}
	return nil
}

func (s *SQLite) ListSessions(ctx context.Context, clientID string) ([]model.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, status, session_date, notes, created_at
		 FROM sessions WHERE client_id = ?
		 ORDER BY session_date DESC, created_at DESC`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.SessionRecord
	index := make(map[string]int)
	for rows.Next() {
		var sess model.SessionRecord
		var status string
		if err := rows.Scan(&sess.ID, &sess.ClientID, &status, &sess.SessionDate,
			&sess.Notes, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.Status = model.SessionStatus(status)
		index[sess.ID] = len(sessions)
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx,
		`SELECT p.session_id, p.item_code, p.quantity, p.unit_price
		 FROM session_products p
		 JOIN sessions s ON s.id = p.session_id
		 WHERE s.client_id = ?`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("query session products: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var sessionID, code string
		var qty, price float64
		if err := prows.Scan(&sessionID, &code, &qty, &price); err != nil {
			return nil, fmt.Errorf("scan session product: %w", err)
		}
		if i, ok := index[sessionID]; ok {
			sessions[i].Products = append(sessions[i].Products, model.ProductUsage{
				ItemCode:  code,
				Quantity:  model.Quantity(qty),
				UnitPrice: model.Amount(price),
			})
		}
	}
	return sessions, prows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
