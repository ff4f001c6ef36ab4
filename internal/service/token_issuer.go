package service

import (
	"time"

	"go-appointment-booking/internal/domain/entity"
	"go-appointment-booking/internal/domain/repository"
	"go-appointment-booking/pkg/jwt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TokenPair is the result of one issuance: a short-lived access token and the
// single live refresh token for the user.
type TokenPair struct {
	AccessToken    string
	AccessTokenID  string
	RefreshToken   string
	RefreshTokenID string
	ExpiresIn      int64
}

// TokenIssuer mints access/refresh token pairs. Issuing replaces any prior
// refresh token for the user, so at most one refresh token is live per
// identity at any time.
type TokenIssuer struct {
	log        *logrus.Logger
	jwtService *jwt.JWTService
	tokenRepo  repository.RefreshTokenRepository
}

func NewTokenIssuer(log *logrus.Logger, jwtService *jwt.JWTService, tokenRepo repository.RefreshTokenRepository) *TokenIssuer {
	return &TokenIssuer{
		log:        log,
		jwtService: jwtService,
		tokenRepo:  tokenRepo,
	}
}

// Issue mints both tokens and persists the refresh token, removing any
// existing one for the user first. The delete and create share the caller's
// transaction so a failed issuance leaves the previous token untouched.
func (i *TokenIssuer) Issue(tx *gorm.DB, user *entity.User) (*TokenPair, error) {
	roles := user.RoleNames()

	accessToken, accessTokenID, err := i.jwtService.GenerateAccessToken(user.ID, user.Email, roles)
	if err != nil {
		i.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := i.jwtService.GenerateRefreshToken(user.ID, user.Email, roles)
	if err != nil {
		i.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if _, err := i.tokenRepo.DeleteByUserID(tx, user.ID); err != nil {
		i.log.Warnf("Failed to remove previous refresh token: %+v", err)
		return nil, err
	}

	record := &entity.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(i.jwtService.GetRefreshExpiry()),
	}
	if err := i.tokenRepo.Create(tx, record); err != nil {
		i.log.Warnf("Failed to persist refresh token: %+v", err)
		return nil, err
	}

	return &TokenPair{
		AccessToken:    accessToken,
		AccessTokenID:  accessTokenID,
		RefreshToken:   refreshToken,
		RefreshTokenID: refreshTokenID,
		ExpiresIn:      int64(i.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}
