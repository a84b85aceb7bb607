package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-marketplace-orders/internal/pagination"
	"github.com/ariefcatur/go-marketplace-orders/internal/postgres"
)

const orderColumns = `o.order_id, o.order_number, o.customer_id, o.provider_id,
	COALESCE(NULLIF(TRIM(c.first_name || ' ' || c.last_name), ''), c.email, ''),
	COALESCE(p.company_name, NULLIF(TRIM(p.first_name || ' ' || p.last_name), ''), ''),
	o.status, o.total_amount, o.currency, o.shipping_address, o.printed, o.created_at, o.updated_at`

const orderFrom = `orders o
	LEFT JOIN users c ON c.user_id = o.customer_id
	LEFT JOIN users p ON p.user_id = o.provider_id`

// Filter narrows an order listing. Nil fields are not applied.
type Filter struct {
	CustomerID  *uuid.UUID
	ProviderID  *uuid.UUID
	Status      *Status
	OrderNumber *string
}

// Repo persists orders and their lines.
type Repo struct{ DB *pgxpool.Pool }

// insertOrder writes the header and fills in the generated id and timestamps.
func insertOrder(ctx context.Context, tx postgres.DBTX, o *Order) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO orders(order_number, customer_id, provider_id, status, total_amount, currency, shipping_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING order_id, created_at, updated_at`,
		o.Number, o.CustomerID, o.ProviderID, string(o.Status), o.TotalAmount, o.Currency, o.ShippingAddress,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("tx.QueryRow insert order: %w", err)
	}
	return nil
}

func insertLines(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, lines []Line) error {
	batch := &pgx.Batch{}
	for i, l := range lines {
		batch.Queue(`
			INSERT INTO order_items(order_id, provider_set_id, set_id, position, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING order_item_id`,
			orderID, l.ListingID, l.SetID, i, l.Quantity, l.UnitPrice, l.LineTotal)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range lines {
		if err := br.QueryRow().Scan(&lines[i].ID); err != nil {
			_ = br.Close()
			return fmt.Errorf("batch insert order item %d: %w", i, err)
		}
		lines[i].OrderID = orderID
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("br.Close: %w", err)
	}
	return nil
}

// Get loads an order with its lines.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	return getOrder(ctx, r.DB, id)
}

func getOrder(ctx context.Context, db postgres.DBTX, id uuid.UUID) (Order, error) {
	o, err := scanOrder(db.QueryRow(ctx, `SELECT `+orderColumns+` FROM `+orderFrom+` WHERE o.order_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("select order: %w", err)
	}

	rows, err := db.Query(ctx, `
		SELECT oi.order_item_id, oi.order_id, oi.provider_set_id, oi.set_id, COALESCE(s.name, ''),
		       oi.quantity, oi.unit_price, oi.line_total
		FROM order_items oi
		LEFT JOIN sets s ON s.set_id = oi.set_id
		WHERE oi.order_id = $1
		ORDER BY oi.position`, id)
	if err != nil {
		return Order{}, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ListingID, &l.SetID, &l.SetName,
			&l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return Order{}, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, l)
	}
	if err := rows.Err(); err != nil {
		return Order{}, fmt.Errorf("rows.Err: %w", err)
	}
	return o, nil
}

// List returns one page of orders (without lines), newest first, and the
// total number of orders matching f.
func (r *Repo) List(ctx context.Context, f Filter, page pagination.Page) ([]Order, int, error) {
	where, args := f.where()

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, page.Limit, page.Offset())
	rows, err := r.DB.Query(ctx, fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY o.created_at DESC, o.order_id LIMIT $%d OFFSET $%d`,
		orderColumns, orderFrom, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	out := make([]Order, 0, page.Limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows.Err: %w", err)
	}
	return out, total, nil
}

func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.CustomerID != nil {
		add("o.customer_id = $%d", *f.CustomerID)
	}
	if f.ProviderID != nil {
		add("o.provider_id = $%d", *f.ProviderID)
	}
	if f.Status != nil {
		add("o.status = $%d", string(*f.Status))
	}
	if f.OrderNumber != nil {
		add("o.order_number = $%d", *f.OrderNumber)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o      Order
		status string
	)
	if err := row.Scan(&o.ID, &o.Number, &o.CustomerID, &o.ProviderID, &o.CustomerName, &o.ProviderName,
		&status, &o.TotalAmount, &o.Currency, &o.ShippingAddress, &o.Printed, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return Order{}, err
	}
	s, err := ToStatus(status)
	if err != nil {
		return Order{}, fmt.Errorf("ToStatus[%s]: %w", status, err)
	}
	o.Status = s
	return o, nil
}
