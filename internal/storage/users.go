package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"voisafe/backend/internal/apperr"
	"voisafe/backend/internal/models"
)

// GetUserByID завантажує користувача за первинним ключем.
func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("storage: user %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail looks a user up by their (lowercased) email.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("storage: user by email: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser persists a new account. A duplicate email surfaces as
// apperr.ErrDuplicateKey so the handler can answer 400 instead of 500.
func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	err := s.DB.WithContext(ctx).Create(user).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("storage: email already registered: %w", apperr.ErrDuplicateKey)
	}
	return err
}

// UpdateUser зберігає зміни облікового запису.
func (s *Service) UpdateUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Save(user).Error
}

// GetOrganizationByID loads one tenant.
func (s *Service) GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	err := s.DB.WithContext(ctx).First(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("storage: organization %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetOrganizationBySlug loads one tenant by its URL slug.
func (s *Service) GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	err := s.DB.WithContext(ctx).First(&org, "slug = ?", strings.ToLower(slug)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("storage: organization %s: %w", slug, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// FindOrganizationByName matches the display name case-insensitively; used by
// registration to decide between joining and auto-onboarding.
func (s *Service) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	var org models.Organization
	err := s.DB.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("storage: organization %q: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateOrganization persists a new tenant.
func (s *Service) CreateOrganization(ctx context.Context, org *models.Organization) error {
	err := s.DB.WithContext(ctx).Create(org).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("storage: organization slug taken: %w", apperr.ErrDuplicateKey)
	}
	return err
}

// UpdateOrganization зберігає зміни організації.
func (s *Service) UpdateOrganization(ctx context.Context, org *models.Organization) error {
	return s.DB.WithContext(ctx).Save(org).Error
}
