package dto

import "inventory-system/internal/entities"

type LoginDTO struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type Verify2FADTO struct {
	ChallengeID string `json:"challengeId" validate:"required,uuid"`
	Token       string `json:"token" validate:"required,len=6,numeric"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type TwoFATokenDTO struct {
	Token string `json:"token" validate:"required,len=6,numeric"`
}

// AuthResponseDTO - ответ входа. При включённой 2FA токенов нет, только challengeId.
type AuthResponseDTO struct {
	AccessToken      string         `json:"accessToken,omitempty"`
	RefreshToken     string         `json:"refreshToken,omitempty"`
	User             *entities.User `json:"user,omitempty"`
	Requires2FA      bool           `json:"requires2FA,omitempty"`
	ChallengeID      string         `json:"challengeId,omitempty"`
	Requires2FASetup bool           `json:"requires2FASetup,omitempty"`
}

type TwoFASetupDTO struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauthUrl"`
}
