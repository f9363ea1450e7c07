// Package devbackend is a local stand-in for the hosted data store. It serves
// the same REST surface over a SQLite database so the client can be exercised
// end to end without network access.
package devbackend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/finq/internal/models"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("row not found")

// ColumnError reports a write naming a column the table does not accept.
type ColumnError struct {
	Table  string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("could not find the '%s' column of '%s'", e.Column, e.Table)
}

// writable lists the columns a PATCH may set, per table.
var writable = map[string]map[string]bool{
	"debts": {
		"title": true, "creditor": true, "due_date": true,
		"status": true, "currency": true, "type": true,
	},
	"assets": {
		"name": true, "type": true,
	},
}

// Store implements the backend tables on SQLite.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// NewStore creates a store over a database carrying db.BackendSchemaSQL.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// ListDebts returns the owner's debts with their amount history, ordered by
// due date ascending with undated debts last.
func (s *Store) ListDebts(ctx context.Context, ownerID string) ([]models.Debt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, creditor, amount, currency, due_date, status, type, created_at
		 FROM debts WHERE user_id = ?
		 ORDER BY due_date IS NULL, due_date ASC, created_at ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	debts := []models.Debt{}
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}

	for i := range debts {
		history, err := s.debtHistory(ctx, debts[i].ID)
		if err != nil {
			return nil, err
		}
		debts[i].History = history
	}
	return debts, nil
}

// GetDebt retrieves one debt with its history.
func (s *Store) GetDebt(ctx context.Context, id string) (*models.Debt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, creditor, amount, currency, due_date, status, type, created_at
		 FROM debts WHERE id = ?`,
		id,
	)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.History, err = s.debtHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// InsertDebt stores a new debt for ownerID.
func (s *Store) InsertDebt(ctx context.Context, ownerID string, d models.NewDebt) (*models.Debt, error) {
	id := s.newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO debts (id, user_id, title, creditor, amount, currency, due_date, status, type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ownerID, d.Title, d.Creditor, d.Amount.String(),
		string(orDefault(d.Currency, models.CurrencyUSD)), nullable(d.DueDate),
		string(orDefault(d.Status, models.DebtStatusPending)), string(orDefault(d.Type, models.DebtTermShort)),
		s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert debt: %w", err)
	}
	return s.GetDebt(ctx, id)
}

// PatchDebt writes the given columns of one debt.
func (s *Store) PatchDebt(ctx context.Context, id string, fields map[string]any) (*models.Debt, error) {
	if err := s.patch(ctx, "debts", id, fields); err != nil {
		return nil, err
	}
	return s.GetDebt(ctx, id)
}

// DeleteDebt removes a debt and its history. Deleting a missing debt is not an error.
func (s *Store) DeleteDebt(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM debts WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	return nil
}

// SetDebtAmount updates a debt's amount and appends a history row in one transaction.
func (s *Store) SetDebtAmount(ctx context.Context, id string, amount decimal.Decimal, note string) error {
	return s.setAmount(ctx, "debts", "debt_amount_history", "debt_id", id, amount, note)
}

// ListAssets returns the owner's assets, newest first.
func (s *Store) ListAssets(ctx context.Context, ownerID string) ([]models.Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, amount, created_at
		 FROM assets WHERE user_id = ?
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// GetAsset retrieves one asset.
func (s *Store) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, type, amount, created_at FROM assets WHERE id = ?",
		id,
	)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// InsertAsset stores a new asset for ownerID.
func (s *Store) InsertAsset(ctx context.Context, ownerID string, a models.NewAsset) (*models.Asset, error) {
	id := s.newID()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO assets (id, user_id, name, type, amount, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, ownerID, a.Name, string(a.Type), a.Amount.String(), s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert asset: %w", err)
	}
	return s.GetAsset(ctx, id)
}

// PatchAsset writes the given columns of one asset.
func (s *Store) PatchAsset(ctx context.Context, id string, fields map[string]any) (*models.Asset, error) {
	if err := s.patch(ctx, "assets", id, fields); err != nil {
		return nil, err
	}
	return s.GetAsset(ctx, id)
}

// DeleteAsset removes an asset. Deleting a missing asset is not an error.
func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

// SetAssetAmount updates an asset's amount and appends a history row in one transaction.
func (s *Store) SetAssetAmount(ctx context.Context, id string, amount decimal.Decimal, note string) error {
	return s.setAmount(ctx, "assets", "asset_amount_history", "asset_id", id, amount, note)
}

func (s *Store) patch(ctx context.Context, table, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	var (
		sets []string
		args []any
	)
	for column, value := range fields {
		if !writable[table][column] {
			return &ColumnError{Table: table, Column: column}
		}
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", ")),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) setAmount(ctx context.Context, table, historyTable, fkColumn, id string, amount decimal.Decimal, note string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID string
	err = tx.QueryRowContext(ctx, fmt.Sprintf("SELECT user_id FROM %s WHERE id = ?", table), id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", table, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET amount = ? WHERE id = ?", table), amount.String(), id); err != nil {
		return fmt.Errorf("failed to update %s amount: %w", table, err)
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, %s, user_id, amount, note, logged_at) VALUES (?, ?, ?, ?, ?, ?)", historyTable, fkColumn),
		s.newID(), id, ownerID, amount.String(), note, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", historyTable, err)
	}

	return tx.Commit()
}

func (s *Store) debtHistory(ctx context.Context, debtID string) ([]models.DebtAmountHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, debt_id, user_id, amount, note, logged_at
		 FROM debt_amount_history WHERE debt_id = ? ORDER BY logged_at ASC`,
		debtID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load debt history: %w", err)
	}
	defer rows.Close()

	history := []models.DebtAmountHistory{}
	for rows.Next() {
		var (
			h      models.DebtAmountHistory
			amount string
		)
		if err := rows.Scan(&h.ID, &h.DebtID, &h.UserID, &amount, &h.Note, &h.LoggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan debt history: %w", err)
		}
		if h.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDebt(row scanner) (*models.Debt, error) {
	var (
		d       models.Debt
		amount  string
		dueDate sql.NullString
	)
	err := row.Scan(&d.ID, &d.UserID, &d.Title, &d.Creditor, &amount, &d.Currency, &dueDate, &d.Status, &d.Type, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan debt: %w", err)
	}
	if d.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	if dueDate.Valid {
		d.DueDate = &dueDate.String
	}
	return &d, nil
}

func scanAsset(row scanner) (*models.Asset, error) {
	var (
		a      models.Asset
		amount string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &amount, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}
	if a.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	return &a, nil
}

func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}
