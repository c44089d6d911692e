package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/storekit/fulfillment-svc/internal/service/models/order"
	"github.com/storekit/fulfillment-svc/internal/transport/http/httperr"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

type service interface {
	ListOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Ids         []int64  `schema:"ids,omitempty"`
	CustomerIds []int64  `schema:"customerIds,omitempty"`
	Statuses    []string `schema:"statuses,omitempty"`
	Limit       int      `schema:"limit,omitempty"`
	Offset      int      `schema:"offset,omitempty"`
}

func (q *queryOrdersRequest) ToModel() (*order.QueryOrdersModel, error) {
	statuses := make([]order.Status, len(q.Statuses))
	for i, raw := range q.Statuses {
		status, err := order.ParseStatus(raw)
		if err != nil {
			return nil, &apperr.ValidationError{Reason: "unknown status " + raw}
		}
		statuses[i] = status
	}

	return &order.QueryOrdersModel{
		Ids:         q.Ids,
		CustomerIds: q.CustomerIds,
		Statuses:    statuses,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}, nil
}

// ListOrders handles the list orders request.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		httperr.Write(w, &apperr.ValidationError{Reason: "malformed query parameters"})
		slog.Error("Error decoding request", "error", err)

		return
	}

	filter, err := query.ToModel()
	if err != nil {
		httperr.Write(w, err)

		return
	}

	orders, err := service.ListOrders(r.Context(), filter)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing orders", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orders); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
