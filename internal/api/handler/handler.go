// Package handler wires the HTTP surface: request parsing, the response
// envelope and the mapping from the internal error taxonomy onto HTTP status
// codes. All business decisions live in the complaint service.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"voisafe/backend/internal/apperr"
	"voisafe/backend/internal/auth"
	"voisafe/backend/internal/chathub"
	"voisafe/backend/internal/complaint"
	"voisafe/backend/internal/storage"
)

// Handler містить залежності для всіх HTTP-обробників.
type Handler struct {
	Complaints *complaint.Service
	Hub        *chathub.ManagerService
	Tokens     *auth.TokenManager
	Storage    storage.Storage
}

func NewHandler(svc *complaint.Service, hub *chathub.ManagerService, tokens *auth.TokenManager, s storage.Storage) *Handler {
	return &Handler{Complaints: svc, Hub: hub, Tokens: tokens, Storage: s}
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OK"})
}

// ok sends the success envelope.
func ok(c *gin.Context, status int, message string, data gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail maps an internal error onto the failure envelope. Internal errors are
// logged with detail but reported to the client generically.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	message := clientMessage(err, status)
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"success": false, "message": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrDuplicateKey):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden), errors.Is(err, apperr.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage strips internal wrapping for client-safe errors and replaces
// server-side failures with a generic line.
func clientMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
