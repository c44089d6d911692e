package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/storekit/fulfillment-svc/internal/service/models/category"
	"github.com/storekit/fulfillment-svc/internal/service/models/order"
	"github.com/storekit/fulfillment-svc/internal/service/models/product"
	"github.com/storekit/fulfillment-svc/internal/service/services/fulfillment"
	createorder "github.com/storekit/fulfillment-svc/internal/transport/http/create_order"
	getorder "github.com/storekit/fulfillment-svc/internal/transport/http/get_order"
	getproduct "github.com/storekit/fulfillment-svc/internal/transport/http/get_product"
	listcategories "github.com/storekit/fulfillment-svc/internal/transport/http/list_categories"
	listorders "github.com/storekit/fulfillment-svc/internal/transport/http/list_orders"
	listproducts "github.com/storekit/fulfillment-svc/internal/transport/http/list_products"
	updatestatus "github.com/storekit/fulfillment-svc/internal/transport/http/update_status"
	"github.com/storekit/fulfillment-svc/pkg/http/middleware/trace"
	"github.com/storekit/fulfillment-svc/pkg/logger"
)

type fulfillmentService interface {
	CreateOrder(ctx context.Context, in fulfillment.CreateOrderInput) (*order.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, next order.Status) (*order.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*order.Order, error)
	ListOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}

type catalogService interface {
	ListProducts(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
	ListCategories(ctx context.Context) ([]category.Category, error)
}

type HTTPTransport struct {
	server      *http.Server
	router      *chi.Mux
	fulfillment fulfillmentService
	catalog     catalogService
}

func NewHTTPTransport(fulfillmentSvc fulfillmentService, catalogSvc catalogService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:      server,
		router:      router,
		fulfillment: fulfillmentSvc,
		catalog:     catalogSvc,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Post("/orders", h.createOrder)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{orderId}", h.getOrder)
		r.Patch("/orders/{orderId}/status", h.updateStatus)

		r.Get("/products", h.listProducts)
		r.Get("/products/{productId}", h.getProduct)
		r.Get("/categories", h.listCategories)
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.fulfillment)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.fulfillment)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.fulfillment)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.fulfillment)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	listproducts.ListProducts(w, r, h.catalog)
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	getproduct.GetProduct(w, r, h.catalog)
}

func (h *HTTPTransport) listCategories(w http.ResponseWriter, r *http.Request) {
	listcategories.ListCategories(w, r, h.catalog)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
