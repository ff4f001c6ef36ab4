package repository

import (
	"go-appointment-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefreshTokenRepository interface {
	Create(db *gorm.DB, token *entity.RefreshToken) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.RefreshToken, error)
	DeleteByUserID(db *gorm.DB, userID uuid.UUID) (int64, error)
}
