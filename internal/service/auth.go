package service

import (
	"github.com/google/uuid"

	"github.com/xkailive-dev/xkailive/shared/domain"
	e "github.com/xkailive-dev/xkailive/shared/errors"
	"github.com/xkailive-dev/xkailive/shared/jwt"
)

// AuthService issues guest identities. There is no account store: a guest
// picks a display name, gets a fresh opaque id, and carries both in a signed
// token for the session's lifetime.
type AuthService struct {
	jwt jwt.JwtService
}

func NewAuthService(jwtService jwt.JwtService) *AuthService {
	return &AuthService{jwt: jwtService}
}

// GuestLogin mints a user and a token for it.
func (s *AuthService) GuestLogin(name, avatarURL string) (domain.User, string, error) {
	name = SanitizeText(name)
	if name == "" {
		return domain.User{}, "", &e.ErrorWithStatusCode{Message: "Name is empty", StatusCode: 422}
	}

	user := domain.User{
		Id:        uuid.NewString(),
		Name:      name,
		AvatarURL: avatarURL,
	}

	token, err := s.jwt.NewToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}
