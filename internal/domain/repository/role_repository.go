package repository

import (
	"go-appointment-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindByName(db *gorm.DB, name string) (*entity.Role, error)
	FindOrCreateByName(db *gorm.DB, name string) (*entity.Role, error)
}
