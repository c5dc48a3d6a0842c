package handler

import (
	"github.com/gourmet-gateway/user-service/internal/core/domain"
	"github.com/gourmet-gateway/user-service/internal/core/ports"
)

func toAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{
		Token:    r.Token,
		Username: r.User.Username,
		Role:     string(r.User.Role),
	}
}

// toUserResponse never exposes the password hash or timestamps.
func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
		Role:      string(u.Role),
	}
}

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
}
