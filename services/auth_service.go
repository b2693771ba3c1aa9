package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/yashrajoria/storefront/clients"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/models"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// AuthService wraps the sign-up and sign-in endpoints.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) error
	Login(ctx context.Context, creds models.Credentials) (*models.Session, error)
}

type authServiceImpl struct {
	api    clients.Requester
	logger *zap.Logger
}

func NewAuthService(api clients.Requester, logger *zap.Logger) AuthService {
	return &authServiceImpl{api: api, logger: logger}
}

func (s *authServiceImpl) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := s.api.Request(ctx, http.MethodPost, "/auth/signup", nil, req, "", nil); err != nil {
		s.logger.Warn("Sign up failed", zap.String("email", req.Email), zap.Error(err))
		return upstreamFailure("sign up", err)
	}
	return nil
}

// Login signs in and returns the session. When the backend omits the user
// object it is read from the token claims.
func (s *authServiceImpl) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	var resp models.AuthResponse
	if err := s.api.Request(ctx, http.MethodPost, "/auth/signin", nil, creds, "", &resp); err != nil {
		s.logger.Warn("Sign in failed", zap.String("email", creds.Email), zap.Error(err))
		return nil, upstreamFailure("sign in", err)
	}
	if resp.Token == "" {
		return nil, apperrors.Unauthorized("Sign in returned no token")
	}

	user := resp.User
	if user == nil {
		u, err := UserFromToken(resp.Token)
		if err != nil {
			s.logger.Warn("Unreadable session token", zap.Error(err))
			return nil, apperrors.Unauthorized("Sign in returned an unreadable token")
		}
		user = u
	}
	if user.Email == "" {
		user.Email = creds.Email
	}

	return &models.Session{User: *user, Token: resp.Token}, nil
}

// UserFromToken reads the user from JWT claims without verifying the
// signature; the backend verifies every bearer call.
func UserFromToken(token string) (*models.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	user := &models.User{Type: models.UserTypeCommon}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	for _, key := range []string{"id", "userId", "sub"} {
		if id, ok := claimID(claims[key]); ok {
			user.ID = id
			break
		}
	}
	for _, key := range []string{"type", "role"} {
		if t, ok := claims[key].(string); ok && t != "" {
			user.Type = normalizeUserType(t)
			break
		}
	}
	if user.Email == "" {
		if sub, ok := claims["sub"].(string); ok {
			if _, err := strconv.ParseInt(sub, 10, 64); err != nil {
				user.Email = sub
			}
		}
	}
	return user, nil
}

func claimID(v any) (int64, bool) {
	switch id := v.(type) {
	case float64:
		return int64(id), true
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func normalizeUserType(t string) models.UserType {
	switch t {
	case "Admin", "ADMIN", "admin", "ROLE_ADMIN":
		return models.UserTypeAdmin
	}
	return models.UserTypeCommon
}
