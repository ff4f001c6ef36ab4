package service

import (
	"go-appointment-booking/internal/domain/entity"
	"go-appointment-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RoleGranter grants a named role to a user. Granting is idempotent: a role
// the user already holds is never duplicated.
type RoleGranter struct {
	log      *logrus.Logger
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

func NewRoleGranter(log *logrus.Logger, userRepo repository.UserRepository, roleRepo repository.RoleRepository) *RoleGranter {
	return &RoleGranter{
		log:      log,
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

// Grant adds roleName to the user's role set if it is not already present.
// Runs inside the caller's transaction.
func (g *RoleGranter) Grant(tx *gorm.DB, user *entity.User, roleName string) error {
	if user.HasRole(roleName) {
		return nil
	}

	role, err := g.roleRepo.FindOrCreateByName(tx, roleName)
	if err != nil {
		g.log.Warnf("Failed to resolve role %s: %+v", roleName, err)
		return err
	}

	if err := g.userRepo.AppendRole(tx, user, role); err != nil {
		g.log.Warnf("Failed to grant role %s to user %s: %+v", roleName, user.ID, err)
		return err
	}

	user.Roles = append(user.Roles, *role)
	return nil
}
