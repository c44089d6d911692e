package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/storekit/fulfillment-svc/internal/dal/postgres"
	"github.com/storekit/fulfillment-svc/internal/service/models/order"
	"github.com/storekit/fulfillment-svc/internal/service/models/orderitem"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id          int64     `db:"order_id"`
	CustomerId  int64     `db:"customer_id"`
	Status      string    `db:"status"`
	TotalAmount string    `db:"total_amount"`
	CreatedAt   time.Time `db:"created_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}
	total, err := decimal.NewFromString(o.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse order total: %w", err)
	}

	return &order.Order{
		ID:          o.Id,
		CustomerID:  o.CustomerId,
		Status:      status,
		TotalAmount: total,
		CreatedAt:   o.CreatedAt,
		Items:       []orderitem.OrderItem{}, // Will be populated separately
	}, nil
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert creates an order header and returns it with generated id and timestamp.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	sql, args, err := r.sb.
		Insert("orders").
		Columns("customer_id", "status", "total_amount").
		Values(o.CustomerID, o.Status.String(), o.TotalAmount.String()).
		Suffix("RETURNING order_id, created_at").
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	var createdAt pgtype.Timestamptz
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&o.ID, &createdAt); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	o.CreatedAt = createdAt.Time

	return o, nil
}

// Query retrieves order headers based on filter criteria.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.sb.
		Select(
			"order_id",
			"customer_id",
			"status",
			"total_amount::text",
			"created_at",
		).
		From("orders").
		OrderBy("order_id ASC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"order_id": filter.Ids})
	}

	if len(filter.CustomerIds) > 0 {
		query = query.Where(sq.Eq{"customer_id": filter.CustomerIds})
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s.String()
		}
		query = query.Where(sq.Eq{"status": statuses})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		var createdAt pgtype.Timestamptz
		err := rows.Scan(
			&dal.Id,
			&dal.CustomerId,
			&dal.Status,
			&dal.TotalAmount,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		dal.CreatedAt = createdAt.Time

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetStatusForUpdate reads an order's status under a row lock.
func (r *PostgresOrderRepository) GetStatusForUpdate(
	ctx context.Context,
	id int64,
) (order.Status, error) {
	var raw string
	err := r.conn.QueryRow(
		ctx,
		`SELECT status FROM orders WHERE order_id = $1 FOR UPDATE`,
		id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", &apperr.NotFoundError{Resource: "order", ID: id}
	}
	if err != nil {
		return "", fmt.Errorf("failed to read order status: %w", err)
	}

	return order.ParseStatus(raw)
}

// UpdateStatus sets an order's status.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status order.Status,
) error {
	sql, args, err := r.sb.
		Update("orders").
		Set("status", status.String()).
		Where(sq.Eq{"order_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &apperr.NotFoundError{Resource: "order", ID: id}
	}

	return nil
}
