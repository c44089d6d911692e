package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/storekit/fulfillment-svc/internal/dal/postgres"
	"github.com/storekit/fulfillment-svc/internal/dal/rabbitmq"
	outboxrepo "github.com/storekit/fulfillment-svc/internal/dal/repositories/outbox/postgres"
	"github.com/storekit/fulfillment-svc/internal/jaeger"
	"github.com/storekit/fulfillment-svc/internal/service/services/catalog"
	"github.com/storekit/fulfillment-svc/internal/service/services/fulfillment"
	httptransport "github.com/storekit/fulfillment-svc/internal/transport/http"
	outboxworker "github.com/storekit/fulfillment-svc/internal/worker/outbox"
)

// App represents the application.
type App struct {
	fulfillmentSvc *fulfillment.Service
	catalogSvc     *catalog.Service
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	outboxWorker   *outboxworker.Worker
	tracerProvider *sdktrace.TracerProvider
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	tracerProvider := mustSetupTracing()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	fulfillmentSvc := fulfillment.MustNewService(
		fulfillment.WithPostgresClient(postgresClient),
	)
	catalogSvc := catalog.MustNewService(
		catalog.WithPostgresClient(postgresClient),
	)

	worker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	transport := httptransport.NewHTTPTransport(fulfillmentSvc, catalogSvc)
	transport.RegisterRoutes()

	return &App{
		fulfillmentSvc: fulfillmentSvc,
		catalogSvc:     catalogSvc,
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		outboxWorker:   worker,
		tracerProvider: tracerProvider,
	}
}

func mustSetupTracing() *sdktrace.TracerProvider {
	exporter := jaeger.MustNewJaeger()

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("fulfillment-svc"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.tracerProvider.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
