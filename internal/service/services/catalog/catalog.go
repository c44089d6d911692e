package catalog

import (
	"context"

	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/icategoryrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/iproductrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/postgres"
	categoryrepo "github.com/storekit/fulfillment-svc/internal/dal/repositories/category/postgres"
	productrepo "github.com/storekit/fulfillment-svc/internal/dal/repositories/product/postgres"
	"github.com/storekit/fulfillment-svc/internal/service/models/category"
	"github.com/storekit/fulfillment-svc/internal/service/models/product"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

// Service serves read-only storefront catalog browsing.
type Service struct {
	productRepo  iproductrepo.IProductRepository
	categoryRepo icategoryrepo.ICategoryRepository
}

// option is a function that configures the Service.
type option func(*Service)

// MustNewService creates a new catalog Service.
func MustNewService(opts ...option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient builds the repositories over the client's pool.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *Service) {
		s.productRepo = productrepo.NewPostgresProductRepository(pgClient.Pool())
		s.categoryRepo = categoryrepo.NewPostgresCategoryRepository(pgClient.Pool())
	}
}

// WithRepositories injects repositories directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepositories(
	products iproductrepo.IProductRepository,
	categories icategoryrepo.ICategoryRepository,
) option {
	return func(s *Service) {
		s.productRepo = products
		s.categoryRepo = categories
	}
}

// ListProducts retrieves products matching the filter.
func (s *Service) ListProducts(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	products, err := s.productRepo.Query(ctx, filter)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if products == nil {
		products = []product.Product{}
	}

	return products, nil
}

// GetProduct retrieves one product by id.
func (s *Service) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	products, err := s.productRepo.Query(ctx, &product.QueryProductsModel{Ids: []int64{id}})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if len(products) == 0 {
		return nil, &apperr.NotFoundError{Resource: "product", ID: id}
	}

	return &products[0], nil
}

// ListCategories retrieves all categories.
func (s *Service) ListCategories(ctx context.Context) ([]category.Category, error) {
	categories, err := s.categoryRepo.Query(ctx)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if categories == nil {
		categories = []category.Category{}
	}

	return categories, nil
}
