package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/axssiz/ParfumeProject/internal/domain"
)

type postgresCartSnapshot struct {
	db      *sql.DB
	log     *logrus.Logger
	timeout time.Duration
}

// NewPostgresCartSnapshot reads a user's cart joined to the catalog and
// clears it in the same transaction, so the snapshot is consumed exactly
// once.
func NewPostgresCartSnapshot(db *sql.DB, timeout time.Duration, logger *logrus.Logger) domain.CartSnapshot {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &postgresCartSnapshot{db: db, log: logger, timeout: timeout}
}

// InitCartSchema creates the cart_items table when missing. The parfumes
// catalog table is owned by the catalog subsystem and assumed present.
func InitCartSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cart_items(
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL,
			parfume_id INTEGER NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(user_id, parfume_id)
		)`)
	if err != nil {
		return fmt.Errorf("failed to initialize cart schema: %w", err)
	}
	return nil
}

func (r *postgresCartSnapshot) ReadAndClear(ctx context.Context, userID int) ([]domain.OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err = classify(err)
		r.log.Errorf("Failed to begin cart transaction for user %d: %v", userID, err)
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				r.log.Errorf("Failed to rollback cart transaction: %v", rbErr)
			}
		}
	}()

	query := `
        SELECT c.parfume_id, c.quantity, COALESCE(p.name, ''), COALESCE(p.brand, ''), COALESCE(p.price, 0)
        FROM cart_items c
        LEFT JOIN parfumes p ON c.parfume_id = p.id
        WHERE c.user_id = $1
        ORDER BY c.added_at DESC
    `
	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		err = classify(err)
		r.log.Errorf("Failed to read cart for user %d: %v", userID, err)
		return nil, err
	}

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err = rows.Scan(&item.ProductID, &item.Quantity, &item.Name, &item.Brand, &item.UnitPrice); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning cart item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, classify(err)
	}
	rows.Close()

	if _, err = tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID); err != nil {
		err = classify(err)
		r.log.Errorf("Failed to clear cart for user %d: %v", userID, err)
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = classify(err)
		r.log.Errorf("Failed to commit cart snapshot for user %d: %v", userID, err)
		return nil, err
	}

	r.log.Infof("Cart snapshot consumed for user %d (%d items)", userID, len(items))
	return items, nil
}
