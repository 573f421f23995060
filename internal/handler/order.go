package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/pizzeria/internal/apperr"
	"github.com/dukerupert/pizzeria/internal/auth"
	"github.com/dukerupert/pizzeria/internal/model"
	"github.com/dukerupert/pizzeria/internal/shop"
)

type OrderHandler struct {
	svc    *shop.Service
	logger *slog.Logger
}

func NewOrderHandler(svc *shop.Service, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, logger: logger}
}

type placeOrderRequest struct {
	Items   []model.OrderItem `json:"items"`
	Address string            `json:"address"`
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	sess, _ := auth.FromContext(r.Context())
	o, err := h.svc.PlaceOrder(sess, req.Items, req.Address)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"order_id": o.ID})
}

// Status serves GET /order/status?order_id=.
func (h *OrderHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r.URL.Query().Get("order_id"))
}

// Get serves GET /order/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r.PathValue("id"))
}

func (h *OrderHandler) writeStatus(w http.ResponseWriter, id string) {
	if id == "" {
		writeError(w, h.logger, apperr.NotFound("Order not found."))
		return
	}
	o, err := h.svc.OrderStatus(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	if err := h.svc.CancelOrder(sess, r.PathValue("id"), adminToken(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	message(w, http.StatusOK, "Order cancelled successfully")
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(adminToken(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	orders, err := h.svc.UserOrders(sess)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
