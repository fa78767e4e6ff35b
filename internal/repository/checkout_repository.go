package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/repository/common"
)

var ErrCheckoutOrderNotFound = errors.New("checkout order not found")

// CheckoutRepository owns the checkout_orders table linking gateway orders
// to users and offers.
type CheckoutRepository struct {
	db *sqlx.DB
}

func NewCheckoutRepository(db *sqlx.DB) *CheckoutRepository {
	return &CheckoutRepository{db: db}
}

func (r *CheckoutRepository) Create(ctx context.Context, order *models.CheckoutOrder) error {
	query := `
		INSERT INTO checkout_orders (user_id, offer_id, purpose, method, gateway_order_id, amount, currency, receipt, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		order.UserID, order.OfferID, order.Purpose, order.Method,
		order.GatewayOrderID, order.Amount, order.Currency, order.Receipt, order.Status,
	).Scan(&order.ID, &order.CreatedAt); err != nil {
		return fmt.Errorf("checkout repository: create %w", err)
	}
	return nil
}

func (r *CheckoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CheckoutOrder, error) {
	return common.GetByID[models.CheckoutOrder](ctx, r.db, "checkout_orders", id, ErrCheckoutOrderNotFound)
}

func (r *CheckoutRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.CheckoutOrder, error) {
	var order models.CheckoutOrder
	query := `SELECT * FROM checkout_orders WHERE gateway_order_id = $1`
	if err := r.db.GetContext(ctx, &order, query, gatewayOrderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCheckoutOrderNotFound
		}
		return nil, fmt.Errorf("checkout repository: get by gateway order id %w", err)
	}
	return &order, nil
}

// MarkPaid records a successful gateway confirmation.
func (r *CheckoutRepository) MarkPaid(ctx context.Context, id uuid.UUID, paymentID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE checkout_orders
		SET status = $1, payment_id = $2, paid_at = NOW()
		WHERE id = $3 AND status = $4
	`, models.CheckoutStatusPaid, paymentID, id, models.CheckoutStatusCreated)
	if err != nil {
		return fmt.Errorf("checkout repository: mark paid %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checkout repository: mark paid rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrCheckoutOrderNotFound
	}
	return nil
}

// MarkFailed records a failed or invalid confirmation.
func (r *CheckoutRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE checkout_orders SET status = $1 WHERE id = $2
	`, models.CheckoutStatusFailed, id); err != nil {
		return fmt.Errorf("checkout repository: mark failed %w", err)
	}
	return nil
}

func (r *CheckoutRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.CheckoutOrder, error) {
	var orders []models.CheckoutOrder
	query := `
		SELECT * FROM checkout_orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &orders, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("checkout repository: list for user %w", err)
	}
	return orders, nil
}
