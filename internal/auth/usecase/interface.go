package usecase

import (
	authdomain "moments-backend/internal/auth/domain"
	authdto "moments-backend/internal/auth/dto"
)

// AuthUsecase defines the authentication operations exposed to delivery
type AuthUsecase interface {
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	LogoutAll(userID string) error
	ValidateToken(tokenString string) (*authdomain.User, error)
}
