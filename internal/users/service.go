package users

import (
	"context"
	"errors"

	"github.com/clipsum/backend/internal/database/models"
	"github.com/clipsum/backend/pkg/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = apperr.New(apperr.NotFound, "USER_NOT_FOUND", "User not found")

// Service exposes profile reads and updates for the authenticated user.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type UpdateInput struct {
	FirstName *string
	LastName  *string
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial update; absent fields keep their value.
func (s *Service) UpdateUser(ctx context.Context, userID uuid.UUID, input UpdateInput) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}

	return user, nil
}
