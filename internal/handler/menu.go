package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pizzeria/internal/shop"
)

type MenuHandler struct {
	svc    *shop.Service
	logger *slog.Logger
}

func NewMenuHandler(svc *shop.Service, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{svc: svc, logger: logger}
}

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	menu, err := h.svc.ListMenu()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

// Price is untyped so a non-numeric value is reported as an invalid price
// rather than malformed JSON.
type menuItemRequest struct {
	Name  string `json:"name"`
	Price any    `json:"price"`
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	var price *float64
	if p, ok := req.Price.(float64); ok {
		price = &p
	}

	id, err := h.svc.AddMenuItem(adminToken(r), req.Name, price)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":  fmt.Sprintf("Pizza '%s' added successfully.", req.Name),
		"pizza_id": id,
	})
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMenuItem(adminToken(r), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	message(w, http.StatusOK, "Pizza deleted successfully.")
}
