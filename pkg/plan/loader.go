// Package plan loads funding-plan definition files and applies them to
// storage. A plan file declares the client, the plan window, optional total
// funds, and the allocated item lines.
package plan

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/practicehq/planbudget/pkg/model"
	"github.com/practicehq/planbudget/pkg/storage"
)

// File is the on-disk plan definition.
type File struct {
	Client     string     `yaml:"client"`
	TotalFunds float64    `yaml:"total_funds"`
	StartDate  string     `yaml:"start_date"`
	EndDate    string     `yaml:"end_date"`
	Items      []ItemLine `yaml:"items"`
}

// ItemLine is one allocated budget line in a plan file.
type ItemLine struct {
	Code        string  `yaml:"code"`
	Description string  `yaml:"description"`
	Category    string  `yaml:"category"`
	UnitPrice   float64 `yaml:"unit_price"`
	Quantity    float64 `yaml:"quantity"`
}

// Plan is a validated plan ready to apply.
type Plan struct {
	Settings model.BudgetSettings
	Items    []model.BudgetItem
}

// Load reads and validates a YAML plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates raw YAML plan data.
func Parse(data []byte) (*Plan, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse plan file: %w", err)
	}

	if file.Client == "" {
		return nil, fmt.Errorf("plan file: missing client")
	}

	start, err := model.ParseDate(file.StartDate)
	if err != nil {
		return nil, fmt.Errorf("plan file: invalid start_date: %w", err)
	}
	end, err := model.ParseDate(file.EndDate)
	if err != nil {
		return nil, fmt.Errorf("plan file: invalid end_date: %w", err)
	}
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("plan file: start_date and end_date are required")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("plan file: end_date %s is before start_date %s", end, start)
	}
	if file.TotalFunds < 0 {
		return nil, fmt.Errorf("plan file: total_funds must not be negative")
	}

	seen := make(map[string]struct{}, len(file.Items))
	items := make([]model.BudgetItem, 0, len(file.Items))
	for i, line := range file.Items {
		if line.Code == "" {
			return nil, fmt.Errorf("plan file: item %d: missing code", i+1)
		}
		if _, dup := seen[line.Code]; dup {
			return nil, fmt.Errorf("plan file: duplicate item code %q", line.Code)
		}
		seen[line.Code] = struct{}{}
		if line.UnitPrice < 0 {
			return nil, fmt.Errorf("plan file: item %q: unit_price must not be negative", line.Code)
		}
		if line.Quantity < 0 {
			return nil, fmt.Errorf("plan file: item %q: quantity must not be negative", line.Code)
		}

		items = append(items, model.BudgetItem{
			ClientID:    file.Client,
			ItemCode:    line.Code,
			Description: line.Description,
			Category:    line.Category,
			UnitPrice:   model.Amount(line.UnitPrice),
			Quantity:    model.Quantity(line.Quantity),
		})
	}

	return &Plan{
		Settings: model.BudgetSettings{
			ClientID:   file.Client,
			TotalFunds: model.Amount(file.TotalFunds),
			StartDate:  start,
			EndDate:    end,
			IsActive:   true,
		},
		Items: items,
	}, nil
}

// Apply upserts the plan's settings and items through storage.
func (p *Plan) Apply(ctx context.Context, store storage.Storage) error {
	if err := store.SetBudgetSettings(ctx, &p.Settings); err != nil {
		return fmt.Errorf("apply plan settings: %w", err)
	}
	for i := range p.Items {
		if err := store.UpsertBudgetItem(ctx, &p.Items[i]); err != nil {
			return fmt.Errorf("apply plan item %q: %w", p.Items[i].ItemCode, err)
		}
	}
	return nil
}
