package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/domain/repository"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage keeps the purchase ledger in PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type purchaseRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Purchases returns the purchase ledger repository.
func (s *Storage) Purchases() repository.PurchaseRepository {
	return &purchaseRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS purchases (
            id UUID PRIMARY KEY,
            user_id TEXT NOT NULL,
            order_id TEXT UNIQUE NOT NULL,
            plan_id TEXT NOT NULL,
            status TEXT NOT NULL,
            tracking TEXT NOT NULL,
            subscription_url TEXT NOT NULL DEFAULT '',
            product_id TEXT NOT NULL DEFAULT '',
            attempts INTEGER NOT NULL DEFAULT 0,
            last_error TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_tracking ON purchases(tracking, updated_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const purchaseColumns = `id, user_id, order_id, plan_id, status, tracking, subscription_url, product_id, attempts, last_error, created_at, updated_at`

func scanPurchase(row pgx.Row) (model.Purchase, error) {
	var (
		p        model.Purchase
		status   string
		tracking string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.OrderID, &p.PlanID, &status, &tracking,
		&p.SubscriptionURL, &p.ProductID, &p.Attempts, &p.LastError, &p.CreatedAt, &p.UpdatedAt)
	p.Status = model.OrderStatus(status)
	p.Tracking = model.TrackingState(tracking)
	return p, err
}

func (r *purchaseRepository) Create(ctx context.Context, p *model.Purchase) error {
	const query = `INSERT INTO purchases (id, user_id, order_id, plan_id, status, tracking, subscription_url, product_id, attempts, last_error)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   RETURNING created_at, updated_at`
	err := r.storage.pool.QueryRow(ctx, query, p.ID, p.UserID, p.OrderID, p.PlanID, string(p.Status), string(p.Tracking),
		p.SubscriptionURL, p.ProductID, p.Attempts, p.LastError).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *purchaseRepository) GetByOrderID(ctx context.Context, orderID string) (*model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE order_id=$1`
	p, err := scanPurchase(r.storage.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID string) ([]model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SelectBatchForTracking claims the least recently touched tracking purchases.
// Claimed rows get updated_at bumped so concurrent trackers rotate through the ledger.
func (r *purchaseRepository) SelectBatchForTracking(ctx context.Context, limit int) ([]model.Purchase, error) {
	selectQuery := `SELECT ` + purchaseColumns + `
                    FROM purchases
                    WHERE tracking = 'tracking'
                    ORDER BY updated_at
                    LIMIT $1
                    FOR UPDATE SKIP LOCKED`

	var purchases []model.Purchase
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPurchase(rows)
			if err != nil {
				return err
			}
			purchases = append(purchases, p)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		for _, p := range purchases {
			if _, err := tx.Exec(ctx, `UPDATE purchases SET updated_at=NOW() WHERE id=$1`, p.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

// Update writes purchase state. Settled rows are final: writing to one
// returns ErrConflict.
func (r *purchaseRepository) Update(ctx context.Context, p *model.Purchase) error {
	const query = `UPDATE purchases
                   SET status=$1, tracking=$2, subscription_url=$3, product_id=$4, attempts=$5, last_error=$6, updated_at=NOW()
                   WHERE order_id=$7 AND tracking <> 'settled'`
	tag, err := r.storage.pool.Exec(ctx, query, string(p.Status), string(p.Tracking), p.SubscriptionURL, p.ProductID, p.Attempts, p.LastError, p.OrderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM purchases WHERE order_id=$1)`, p.OrderID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domainErrors.ErrConflict
	}
	return domainErrors.ErrNotFound
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
