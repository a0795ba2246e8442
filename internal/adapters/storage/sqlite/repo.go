package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/cardflow/internal/app"
	"github.com/hylla/cardflow/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// dsnPragmas apply to every pooled connection.
const dsnPragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// querier is the query contract shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Repository is the SQLite implementation of app.Repository.
type Repository struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
}

// Open opens or creates the database file at path and migrates it.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, "file:"+path+"?"+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?"+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db)
}

// newRepository pins the pool to one connection and migrates the schema.
// SQLite allows one writer; a single connection also keeps :memory: databases alive.
func newRepository(db *sql.DB) (*Repository, error) {
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db, q: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the schema when missing.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS boards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS board_columns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			board_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('INITIAL', 'PENDING', 'FINAL', 'CANCEL')),
			created_at TEXT NOT NULL,
			UNIQUE(board_id, position),
			FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS cards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			board_id INTEGER NOT NULL,
			column_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			blocked INTEGER NOT NULL DEFAULT 0,
			block_reason TEXT NOT NULL DEFAULT '',
			blocks_amount INTEGER NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE,
			FOREIGN KEY(column_id) REFERENCES board_columns(id)
		);`,
		`CREATE TABLE IF NOT EXISTS block_events (
			id TEXT PRIMARY KEY,
			card_id INTEGER NOT NULL,
			block_reason TEXT NOT NULL DEFAULT '',
			blocked_at TEXT NOT NULL,
			unblock_reason TEXT NOT NULL DEFAULT '',
			unblocked_at TEXT,
			FOREIGN KEY(card_id) REFERENCES cards(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_board_columns_board ON board_columns(board_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_cards_column ON cards(column_id, id);`,
		`CREATE INDEX IF NOT EXISTS idx_cards_board ON cards(board_id);`,
		`CREATE INDEX IF NOT EXISTS idx_block_events_card ON block_events(card_id, blocked_at);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_block_events_open ON block_events(card_id) WHERE unblocked_at IS NULL;`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// WithinTx runs fn against a transaction-bound repository.
// Nested calls reuse the outer transaction.
func (r *Repository) WithinTx(ctx context.Context, fn func(app.Repository) error) error {
	return r.withTx(ctx, func(tx *Repository) error {
		return fn(tx)
	})
}

// withTx commits when fn succeeds and rolls back otherwise.
func (r *Repository) withTx(ctx context.Context, fn func(*Repository) error) (err error) {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&Repository{db: r.db, q: tx, tx: tx}); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// CreateBoard inserts a board and its columns, assigning ids.
func (r *Repository) CreateBoard(ctx context.Context, b domain.Board, columns []domain.Column) (domain.Board, []domain.Column, error) {
	out := make([]domain.Column, 0, len(columns))
	err := r.withTx(ctx, func(tx *Repository) error {
		res, err := tx.q.ExecContext(ctx, `
			INSERT INTO boards(name, created_at)
			VALUES (?, ?)
		`, b.Name, ts(b.CreatedAt))
		if err != nil {
			return translateConstraint(err)
		}
		if b.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		for _, c := range columns {
			c.BoardID = b.ID
			res, err := tx.q.ExecContext(ctx, `
				INSERT INTO board_columns(board_id, name, position, kind, created_at)
				VALUES (?, ?, ?, ?, ?)
			`, c.BoardID, c.Name, c.Order, string(c.Kind), ts(c.CreatedAt))
			if err != nil {
				return translateConstraint(err)
			}
			if c.ID, err = res.LastInsertId(); err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	})
	if err != nil {
		return domain.Board{}, nil, err
	}
	return b, out, nil
}

// GetBoard returns a board by id.
func (r *Repository) GetBoard(ctx context.Context, id int64) (domain.Board, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM boards
		WHERE id = ?
	`, id)
	return scanBoard(row)
}

// GetBoardByName returns a board by its unique name.
func (r *Repository) GetBoardByName(ctx context.Context, name string) (domain.Board, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM boards
		WHERE name = ?
	`, name)
	return scanBoard(row)
}

// ListBoards lists boards in creation order.
func (r *Repository) ListBoards(ctx context.Context) ([]domain.Board, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM boards
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListColumns lists a board's columns by position.
func (r *Repository) ListColumns(ctx context.Context, boardID int64) ([]domain.Column, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, board_id, name, position, kind, created_at
		FROM board_columns
		WHERE board_id = ?
		ORDER BY position ASC
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Column{}
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetColumn returns a column by id.
func (r *Repository) GetColumn(ctx context.Context, id int64) (domain.Column, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, board_id, name, position, kind, created_at
		FROM board_columns
		WHERE id = ?
	`, id)
	return scanColumn(row)
}

// CreateCard inserts a card and returns it with its id and first version.
func (r *Repository) CreateCard(ctx context.Context, c domain.Card) (domain.Card, error) {
	c.Version = 1
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO cards(board_id, column_id, title, description, blocked, block_reason, blocks_amount, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.BoardID, c.ColumnID, c.Title, c.Description, c.Blocked, c.BlockReason, c.BlocksAmount, c.Version, ts(c.CreatedAt), ts(c.UpdatedAt))
	if err != nil {
		return domain.Card{}, translateConstraint(err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return domain.Card{}, err
	}
	return c, nil
}

// GetCard returns a card by id.
func (r *Repository) GetCard(ctx context.Context, id int64) (domain.Card, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, board_id, column_id, title, description, blocked, block_reason, blocks_amount, version, created_at, updated_at
		FROM cards
		WHERE id = ?
	`, id)
	return scanCard(row)
}

// UpdateCard writes a card when its version still matches the stored row.
func (r *Repository) UpdateCard(ctx context.Context, c domain.Card) (domain.Card, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE cards
		SET column_id = ?, title = ?, description = ?, blocked = ?, block_reason = ?, blocks_amount = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`, c.ColumnID, c.Title, c.Description, c.Blocked, c.BlockReason, c.BlocksAmount, ts(c.UpdatedAt), c.ID, c.Version)
	if err != nil {
		return domain.Card{}, translateConstraint(err)
	}
	if err := translateNoRows(res); err != nil {
		if !errors.Is(err, app.ErrNotFound) {
			return domain.Card{}, err
		}
		var exists int
		switch err := r.q.QueryRowContext(ctx, `SELECT 1 FROM cards WHERE id = ?`, c.ID).Scan(&exists); {
		case errors.Is(err, sql.ErrNoRows):
			return domain.Card{}, app.ErrNotFound
		case err != nil:
			return domain.Card{}, err
		default:
			return domain.Card{}, fmt.Errorf("%w: card %d version %d", app.ErrConflict, c.ID, c.Version)
		}
	}
	c.Version++
	return c, nil
}

// ListCardsByColumn lists a column's cards by id.
func (r *Repository) ListCardsByColumn(ctx context.Context, columnID int64) ([]domain.Card, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, board_id, column_id, title, description, blocked, block_reason, blocks_amount, version, created_at, updated_at
		FROM cards
		WHERE column_id = ?
		ORDER BY id ASC
	`, columnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountCardsByColumn counts a board's cards per column id.
func (r *Repository) CountCardsByColumn(ctx context.Context, boardID int64) (map[int64]int, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT column_id, COUNT(*)
		FROM cards
		WHERE board_id = ?
		GROUP BY column_id
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]int{}
	for rows.Next() {
		var (
			columnID int64
			count    int
		)
		if err := rows.Scan(&columnID, &count); err != nil {
			return nil, err
		}
		out[columnID] = count
	}
	return out, rows.Err()
}

// AppendBlockEvent inserts an open block event.
// A second open event for the same card violates idx_block_events_open.
func (r *Repository) AppendBlockEvent(ctx context.Context, e domain.BlockEvent) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO block_events(id, card_id, block_reason, blocked_at, unblock_reason, unblocked_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.CardID, e.BlockReason, ts(e.BlockedAt), e.UnblockReason, nullableTS(e.UnblockedAt))
	return translateConstraint(err)
}

// GetOpenBlockEvent returns the card's open block event.
func (r *Repository) GetOpenBlockEvent(ctx context.Context, cardID int64) (domain.BlockEvent, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, card_id, block_reason, blocked_at, unblock_reason, unblocked_at
		FROM block_events
		WHERE card_id = ? AND unblocked_at IS NULL
	`, cardID)
	return scanBlockEvent(row)
}

// CloseOpenBlockEvent fills the unblock side of the card's open event.
func (r *Repository) CloseOpenBlockEvent(ctx context.Context, cardID int64, reason string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE block_events
		SET unblock_reason = ?, unblocked_at = ?
		WHERE card_id = ? AND unblocked_at IS NULL
	`, reason, ts(at), cardID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// ListBlockEvents lists a card's block events, oldest first.
func (r *Repository) ListBlockEvents(ctx context.Context, cardID int64) ([]domain.BlockEvent, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, card_id, block_reason, blocked_at, unblock_reason, unblocked_at
		FROM block_events
		WHERE card_id = ?
		ORDER BY blocked_at ASC, rowid ASC
	`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.BlockEvent{}
	for rows.Next() {
		e, err := scanBlockEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanBoard scans one boards row.
func scanBoard(s scanner) (domain.Board, error) {
	var (
		b          domain.Board
		createdRaw string
	)
	if err := s.Scan(&b.ID, &b.Name, &createdRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, app.ErrNotFound
		}
		return domain.Board{}, err
	}
	b.CreatedAt = parseTS(createdRaw)
	return b, nil
}

// scanColumn scans one board_columns row.
func scanColumn(s scanner) (domain.Column, error) {
	var (
		c          domain.Column
		kindRaw    string
		createdRaw string
	)
	if err := s.Scan(&c.ID, &c.BoardID, &c.Name, &c.Order, &kindRaw, &createdRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Column{}, app.ErrNotFound
		}
		return domain.Column{}, err
	}
	c.Kind = domain.ColumnKind(kindRaw)
	c.CreatedAt = parseTS(createdRaw)
	return c, nil
}

// scanCard scans one cards row.
func scanCard(s scanner) (domain.Card, error) {
	var (
		c          domain.Card
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(
		&c.ID,
		&c.BoardID,
		&c.ColumnID,
		&c.Title,
		&c.Description,
		&c.Blocked,
		&c.BlockReason,
		&c.BlocksAmount,
		&c.Version,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Card{}, app.ErrNotFound
		}
		return domain.Card{}, err
	}
	c.CreatedAt = parseTS(createdRaw)
	c.UpdatedAt = parseTS(updatedRaw)
	return c, nil
}

// scanBlockEvent scans one block_events row.
func scanBlockEvent(s scanner) (domain.BlockEvent, error) {
	var (
		e          domain.BlockEvent
		blockedRaw string
		unblocked  sql.NullString
	)
	if err := s.Scan(&e.ID, &e.CardID, &e.BlockReason, &blockedRaw, &e.UnblockReason, &unblocked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BlockEvent{}, app.ErrNotFound
		}
		return domain.BlockEvent{}, err
	}
	e.BlockedAt = parseTS(blockedRaw)
	e.UnblockedAt = parseNullTS(unblocked)
	return e, nil
}

// translateNoRows maps a zero-row write to app.ErrNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// translateConstraint maps unique constraint failures to app.ErrConflict.
func translateConstraint(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
		return fmt.Errorf("%w: %v", app.ErrConflict, err)
	}
	return err
}

// timestampLayout keeps every stored time the same width so text order is time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ts formats a timestamp for storage.
func ts(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// nullableTS formats an optional timestamp for storage.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return ts(*t)
}

// parseTS parses a stored timestamp.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullTS parses an optional stored timestamp.
func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}
