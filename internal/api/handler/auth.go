package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"voisafe/backend/internal/apperr"
	"voisafe/backend/internal/auth"
	"voisafe/backend/internal/models"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	College  string `json:"college" binding:"required"`

	// Student-only fields.
	StudentID  string `json:"studentId"`
	Department string `json:"department"`
	Year       int    `json:"year"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register створює обліковий запис. Перший адміністратор навчального закладу
// автоматично реєструє і саму організацію (тенант); студенти приєднуються до
// наявної.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("invalid registration payload: %w", apperr.ErrValidation))
		return
	}
	if len(req.Password) < auth.MinPasswordLength {
		fail(c, fmt.Errorf("password must be at least %d characters: %w", auth.MinPasswordLength, apperr.ErrValidation))
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleAdmin && role != models.RoleCommitteeAdmin {
		fail(c, fmt.Errorf("unknown role %q: %w", role, apperr.ErrValidation))
		return
	}

	ctx := c.Request.Context()
	college := strings.TrimSpace(req.College)

	org, err := h.Storage.FindOrganizationByName(ctx, college)
	if err != nil && !apperr.IsNotFound(err) {
		fail(c, err)
		return
	}

	switch {
	case org == nil && role == models.RoleAdmin:
		// Auto-onboarding: the first admin of an institution creates its tenant.
		org = &models.Organization{
			Name:         college,
			Slug:         slugify(college),
			ContactEmail: req.Email,
			Status:       models.OrgStatusActive,
		}
		if err := h.Storage.CreateOrganization(ctx, org); err != nil {
			fail(c, err)
			return
		}
	case org != nil && role == models.RoleStudent:
		if !org.CanOperate() {
			fail(c, fmt.Errorf("organization %s is not accepting registrations: %w", org.Slug, apperr.ErrForbidden))
			return
		}
		if !org.AllowPublicRegistration {
			fail(c, fmt.Errorf("organization %s requires invited registration: %w", org.Slug, apperr.ErrForbidden))
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
		College:      college,
		StudentID:    req.StudentID,
		Department:   req.Department,
		Year:         req.Year,
		IsActive:     true,
	}
	if org != nil {
		user.OrgID = org.ID
	}
	if err := h.Storage.CreateUser(ctx, user); err != nil {
		fail(c, err)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusCreated, "User registered successfully", gin.H{
		"token": token,
		"user":  user,
	})
}

// Login перевіряє облікові дані та видає JWT.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("email and password are required: %w", apperr.ErrValidation))
		return
	}

	ctx := c.Request.Context()
	user, err := h.Storage.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Do not leak which part failed.
		fail(c, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized))
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		fail(c, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized))
		return
	}
	if !user.IsActive {
		fail(c, fmt.Errorf("account is deactivated: %w", apperr.ErrUnauthorized))
		return
	}

	now := time.Now()
	user.LastLogin = &now
	if err := h.Storage.UpdateUser(ctx, user); err != nil {
		fail(c, err)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Me повертає профіль автентифікованого користувача.
func (h *Handler) Me(c *gin.Context) {
	actor := auth.Actor(c)
	ok(c, http.StatusOK, "", gin.H{"user": actor})
}

// slugify turns an institution name into a URL-safe tenant slug.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
