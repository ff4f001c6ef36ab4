package repository

import (
	"errors"

	"go-appointment-booking/internal/domain/entity"
	domainRepo "go-appointment-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type refreshTokenRepository struct{}

func NewRefreshTokenRepository() domainRepo.RefreshTokenRepository {
	return &refreshTokenRepository{}
}

func (r *refreshTokenRepository) Create(db *gorm.DB, token *entity.RefreshToken) error {
	return db.Create(token).Error
}

func (r *refreshTokenRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.RefreshToken, error) {
	var token entity.RefreshToken
	err := db.Where("user_id = ?", userID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) DeleteByUserID(db *gorm.DB, userID uuid.UUID) (int64, error) {
	affected := db.Where("user_id = ?", userID).Delete(&entity.RefreshToken{})
	return affected.RowsAffected, affected.Error
}
