package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pizzeria/internal/auth"
	"github.com/dukerupert/pizzeria/internal/middleware"
	"github.com/dukerupert/pizzeria/internal/shop"
)

type AccountHandler struct {
	svc    *shop.Service
	logger *slog.Logger
}

func NewAccountHandler(svc *shop.Service, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Street   string `json:"street"`
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.svc.Register(req.Name, req.Password, req.Street); err != nil {
		writeError(w, h.logger, err)
		return
	}
	message(w, http.StatusCreated, "User registered successfully.")
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message      string `json:"message"`
	Street       string `json:"street"`
	SessionToken string `json:"session_token"`
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	sess, err := h.svc.Login(req.Name, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Message:      "Login successful",
		Street:       sess.Street,
		SessionToken: sess.Token,
	})
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var tok string
	if sess, ok := auth.FromContext(r.Context()); ok {
		tok = sess.Token
	}
	name, err := h.svc.Logout(tok)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	message(w, http.StatusOK, fmt.Sprintf("User %s logged out successfully.", name))
}

func (h *AccountHandler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		message(w, http.StatusOK, "No user is currently logged in.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Logged in as " + sess.Name,
		"user":    sess,
	})
}
