package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"givelife/internal/report"
	"givelife/pkg/apiclient"
	"givelife/pkg/domain"
	"givelife/pkg/inventory"
	"givelife/pkg/listing"
	"givelife/pkg/session"
)

// SessionSource hands out the persister for one portal session id.
type SessionSource interface {
	For(sessionID string) session.Persister
}

// Config holds runtime dependencies for the portal core.
type Config struct {
	API                  *apiclient.Client
	Sessions             SessionSource
	AggregateConcurrency int
	DefaultPageSize      int
	Logger               *slog.Logger
	Now                  func() time.Time
}

// App derives the portal view models from the remote API. It owns no
// durable state besides the session persisters.
type App struct {
	api         *apiclient.Client
	sessions    SessionSource
	concurrency int
	pageSize    int
	logger      *slog.Logger
	now         func() time.Time
}

// New constructs the application core.
func New(cfg Config) (*App, error) {
	if cfg.API == nil {
		return nil, errors.New("app: api client is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("app: session source is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &App{
		api:         cfg.API,
		sessions:    cfg.Sessions,
		concurrency: cfg.AggregateConcurrency,
		pageSize:    listing.NormalizePageSize(cfg.DefaultPageSize, listing.DefaultPageSize),
		logger:      cfg.Logger,
		now:         cfg.Now,
	}, nil
}

// DefaultPageSize is the page size used when a request does not pick one.
func (a *App) DefaultPageSize() int { return a.pageSize }

// OpenSession bootstraps the session store for sessionID.
func (a *App) OpenSession(ctx context.Context, sessionID string) (*session.Store, error) {
	return session.New(ctx, session.Config{
		Auth:      a.api,
		Persister: a.sessions.For(sessionID),
		Logger:    a.logger.With("session_id", sessionID),
		Now:       a.now,
	})
}

// DropSession removes whatever is persisted under sessionID.
func (a *App) DropSession(ctx context.Context, sessionID string) error {
	return a.sessions.For(sessionID).Clear(ctx)
}

// InventorySummary aggregates the given hospitals, or every registered
// hospital when ids is empty. The returned map holds display names.
func (a *App) InventorySummary(ctx context.Context, token string, ids []string) (inventory.Summary, map[string]string, error) {
	cfg := inventory.Config{Concurrency: a.concurrency, Logger: a.logger}
	return inventory.Summarize(ctx, a.api.InventorySource(token), ids, cfg)
}

// ExportInventory renders the all-hospital summary as an XLSX workbook.
func (a *App) ExportInventory(ctx context.Context, token string) ([]byte, error) {
	summary, names, err := a.InventorySummary(ctx, token, nil)
	if err != nil {
		return nil, err
	}
	data, err := report.InventoryWorkbook(summary, names, a.now())
	if err != nil {
		return nil, fmt.Errorf("render inventory workbook: %w", err)
	}
	return data, nil
}

// HospitalInventory is one hospital's stock with its per-type totals and
// the rows at or below their critical level.
type HospitalInventory struct {
	Rows     []domain.InventoryRow `json:"rows"`
	Totals   inventory.Totals      `json:"totals"`
	LowStock []domain.InventoryRow `json:"lowStock"`
	Skipped  int                   `json:"skippedRows,omitempty"`
}

func (a *App) HospitalInventory(ctx context.Context, token, hospitalID string) (HospitalInventory, error) {
	rows, err := a.api.HospitalInventory(ctx, token, hospitalID)
	if err != nil {
		return HospitalInventory{}, err
	}
	totals, skipped := inventory.Sum(rows)
	low := inventory.LowStock(rows)
	if low == nil {
		low = []domain.InventoryRow{}
	}
	if rows == nil {
		rows = []domain.InventoryRow{}
	}
	return HospitalInventory{Rows: rows, Totals: totals, LowStock: low, Skipped: skipped}, nil
}

func (a *App) UpdateInventory(ctx context.Context, token, hospitalID string, upd apiclient.InventoryUpdate) (domain.InventoryRow, error) {
	if err := upd.Validate(); err != nil {
		return domain.InventoryRow{}, err
	}
	bt, _ := domain.ParseBloodType(upd.BloodType)
	upd.BloodType = string(bt)
	return a.api.UpdateInventory(ctx, token, hospitalID, upd)
}
