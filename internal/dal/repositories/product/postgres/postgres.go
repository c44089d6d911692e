package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/storekit/fulfillment-svc/internal/dal/postgres"
	"github.com/storekit/fulfillment-svc/internal/service/models/product"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id            int64  `db:"product_id"`
	Name          string `db:"name"`
	Description   string `db:"description"`
	Price         string `db:"price"`
	StockQuantity int    `db:"stock_quantity"`
	ImageUrl      string `db:"image_url"`
	CategoryId    int64  `db:"category_id"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() (*product.Product, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product price: %w", err)
	}

	return &product.Product{
		ID:            p.Id,
		Name:          p.Name,
		Description:   p.Description,
		Price:         price,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageUrl,
		CategoryID:    p.CategoryId,
	}, nil
}

// PostgresProductRepository represents a Postgres product repository.
type PostgresProductRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn postgres.GenericConn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Query retrieves products based on filter criteria.
func (r *PostgresProductRepository) Query(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	query := r.sb.
		Select(
			"product_id",
			"name",
			"coalesce(description, '')",
			"price::text",
			"stock_quantity",
			"coalesce(image_url, '')",
			"coalesce(category_id, 0)",
		).
		From("products")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"product_id": filter.Ids})
	}

	if len(filter.CategoryIds) > 0 {
		query = query.Where(sq.Eq{"category_id": filter.CategoryIds})
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
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.Name,
			&dal.Description,
			&dal.Price,
			&dal.StockQuantity,
			&dal.ImageUrl,
			&dal.CategoryId,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// ConditionalDecrementStock subtracts quantity from stock only while enough
// remains, in a single UPDATE. The WHERE guard plus the row lock taken by
// UPDATE is what keeps concurrent orders from overselling: there is never a
// separate read and write step.
func (r *PostgresProductRepository) ConditionalDecrementStock(
	ctx context.Context,
	productID int64,
	quantity int,
) (int, error) {
	sql := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2
		WHERE product_id = $1 AND stock_quantity >= $2
		RETURNING stock_quantity
	`

	var remaining int
	err := r.conn.QueryRow(ctx, sql, productID, quantity).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}

	// The guard rejected the update: distinguish a missing product from
	// contested stock and report what is actually available.
	var available int
	err = r.conn.QueryRow(
		ctx,
		`SELECT stock_quantity FROM products WHERE product_id = $1`,
		productID,
	).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &apperr.NotFoundError{Resource: "product", ID: productID}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}

	return 0, &apperr.InsufficientStockError{
		ProductID: productID,
		Requested: quantity,
		Available: available,
	}
}
