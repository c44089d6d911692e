package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/storekit/fulfillment-svc/internal/dal/postgres"
	"github.com/storekit/fulfillment-svc/internal/service/models/customer"
)

// CustomerDal represents customer data access layer model.
type CustomerDal struct {
	Id      int64  `db:"customer_id"`
	Name    string `db:"name"`
	Phone   string `db:"phone"`
	Address string `db:"address"`
}

// ToModel converts CustomerDal to service layer Customer model.
func (c *CustomerDal) ToModel() *customer.Customer {
	return &customer.Customer{
		ID:      c.Id,
		Name:    c.Name,
		Phone:   c.Phone,
		Address: c.Address,
	}
}

// PostgresCustomerRepository represents a Postgres customer repository.
type PostgresCustomerRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresCustomerRepository creates a new Postgres customer repository.
func NewPostgresCustomerRepository(conn postgres.GenericConn) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert creates a customer record and returns it with the generated id.
func (r *PostgresCustomerRepository) Insert(
	ctx context.Context,
	c customer.Customer,
) (customer.Customer, error) {
	sql, args, err := r.sb.
		Insert("customers").
		Columns("name", "phone", "address").
		Values(c.Name, c.Phone, c.Address).
		Suffix("RETURNING customer_id").
		ToSql()
	if err != nil {
		return customer.Customer{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&c.ID); err != nil {
		return customer.Customer{}, fmt.Errorf("failed to insert customer: %w", err)
	}

	return c, nil
}

// Query retrieves customers by id.
func (r *PostgresCustomerRepository) Query(
	ctx context.Context,
	ids []int64,
) ([]customer.Customer, error) {
	query := r.sb.
		Select("customer_id", "name", "phone", "address").
		From("customers")

	if len(ids) > 0 {
		query = query.Where(sq.Eq{"customer_id": ids})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var result []customer.Customer
	for rows.Next() {
		var dal CustomerDal
		if err := rows.Scan(&dal.Id, &dal.Name, &dal.Phone, &dal.Address); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
