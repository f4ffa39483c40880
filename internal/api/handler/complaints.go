package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"voisafe/backend/internal/apperr"
	"voisafe/backend/internal/auth"
	"voisafe/backend/internal/complaint"
	"voisafe/backend/internal/storage"
)

type fileComplaintRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
}

type updateStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

type addNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

type revealIdentityRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// FileComplaint приймає анонімну скаргу. Відповідь містить tracking ID —
// єдиний майбутній доказ авторства.
func (h *Handler) FileComplaint(c *gin.Context) {
	var req fileComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("title, description and category are required: %w", apperr.ErrValidation))
		return
	}

	record, err := h.Complaints.FileComplaint(c.Request.Context(), auth.Actor(c), complaint.FileRequest{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusCreated, "Complaint filed successfully. Save your tracking ID.", gin.H{
		"trackingId": record.TrackingID,
		"complaint":  record,
	})
}

// TrackComplaint is the student self-check by tracking ID.
func (h *Handler) TrackComplaint(c *gin.Context) {
	record, err := h.Complaints.GetByTracking(c.Request.Context(), auth.Actor(c), c.Param("trackingId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"complaint": record})
}

// MyComplaints lists every complaint the caller filed, resolved through the
// mapping store.
func (h *Handler) MyComplaints(c *gin.Context) {
	records, err := h.Complaints.ListMine(c.Request.Context(), auth.Actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"complaints": records, "count": len(records)})
}

// ListComplaints is the tenant-scoped admin dashboard.
func (h *Handler) ListComplaints(c *gin.Context) {
	filter := storage.ComplaintFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Priority: c.Query("priority"),
	}
	records, err := h.Complaints.ListForTenant(c.Request.Context(), auth.Actor(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"complaints": records, "count": len(records)})
}

// GetComplaint is the admin detail view.
func (h *Handler) GetComplaint(c *gin.Context) {
	id, err := complaintID(c)
	if err != nil {
		fail(c, err)
		return
	}
	record, err := h.Complaints.GetByID(c.Request.Context(), auth.Actor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"complaint": record})
}

// UpdateStatus applies a lifecycle transition.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := complaintID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("status is required: %w", apperr.ErrValidation))
		return
	}
	record, err := h.Complaints.UpdateStatus(c.Request.Context(), auth.Actor(c), id, req.Status, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Status updated", gin.H{"complaint": record})
}

// AddNote appends an admin-only note.
func (h *Handler) AddNote(c *gin.Context) {
	id, err := complaintID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("note content is required: %w", apperr.ErrValidation))
		return
	}
	record, err := h.Complaints.AddAdminNote(c.Request.Context(), auth.Actor(c), id, req.Note)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Note added", gin.H{"complaint": record})
}

// RevealIdentity — аварійний маршрут розкриття особи скаржника. Кожен виклик
// (навіть невдалий) лишає запис у журналі доступу.
func (h *Handler) RevealIdentity(c *gin.Context) {
	id, err := complaintID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req revealIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("a reveal reason is required: %w", apperr.ErrValidation))
		return
	}

	result, err := h.Complaints.RevealIdentity(c.Request.Context(), auth.Actor(c), id, req.Reason, c.ClientIP())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Identity revealed. This action has been logged.", gin.H{"identity": result})
}

func complaintID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid complaint id: %w", apperr.ErrValidation)
	}
	return uint(id), nil
}
