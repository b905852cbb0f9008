package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order and its items in a single transaction.
func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, ship_address, ship_city, ship_postal_code, ship_country,
		                    payment_method, tax_price, shipping_price, total_price, is_paid, is_delivered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, o.UserID, o.ShippingAddress.Address, o.ShippingAddress.City, o.ShippingAddress.PostalCode,
		o.ShippingAddress.Country, o.PaymentMethod, o.TaxPrice, o.ShippingPrice, o.TotalPrice,
		o.IsPaid, o.IsDelivered)
	if err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, name, qty, image_url, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, it.OrderID, it.ProductID, it.Name, it.Qty, it.ImageURL, it.Price).Scan(&it.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o := &entity.Order{}
	row := r.pool.QueryRow(ctx, `
		SELECT o.id, o.user_id, o.ship_address, o.ship_city, o.ship_postal_code, o.ship_country,
		       o.payment_method, o.tax_price, o.shipping_price, o.total_price,
		       o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.created_at, o.updated_at,
		       u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`, id)
	if err := scanOrder(row, o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	return r.list(ctx, ` WHERE o.user_id = $1`, userID)
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]entity.Order, error) {
	return r.list(ctx, ``)
}

func (r *OrderRepository) list(ctx context.Context, where string, args ...any) ([]entity.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.user_id, o.ship_address, o.ship_city, o.ship_postal_code, o.ship_country,
		       o.payment_method, o.tax_price, o.shipping_price, o.total_price,
		       o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.created_at, o.updated_at,
		       u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id`+where+`
		ORDER BY o.created_at DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Order
	for rows.Next() {
		var o entity.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *OrderRepository) Update(ctx context.Context, o *entity.Order) error {
	o.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET is_paid = $1, paid_at = $2, is_delivered = $3, delivered_at = $4, updated_at = $5
		WHERE id = $6
	`, o.IsPaid, o.PaidAt, o.IsDelivered, o.DeliveredAt, o.UpdatedAt, o.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, o *entity.Order) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, name, qty, image_url, price
		FROM order_items
		WHERE order_id = $1
	`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Qty, &it.ImageURL, &it.Price); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row, o *entity.Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.ShippingAddress.Address, &o.ShippingAddress.City,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country, &o.PaymentMethod,
		&o.TaxPrice, &o.ShippingPrice, &o.TotalPrice, &o.IsPaid, &o.PaidAt,
		&o.IsDelivered, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt, &o.UserName, &o.UserEmail)
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
