package auth

import (
	"context"
	"log/slog"

	"github.com/interviewhub/gateway/internal/backend"
)

// Upstream is the slice of the backend client the auth flows depend on.
type Upstream interface {
	Login(ctx context.Context, username, password string) (backend.LoginResult, error)
	Register(ctx context.Context, req backend.RegisterRequest) error
	UserInfo(ctx context.Context, token string) (backend.UserInfo, error)
}

// Service wraps the authentication flows proxied to the backend.
type Service struct {
	upstream Upstream
	logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(upstream Upstream, logger *slog.Logger) *Service {
	return &Service{upstream: upstream, logger: logger}
}

// Login authenticates the credentials upstream and fetches the granted
// permission codes for the fresh token. A failed permission fetch degrades to
// an empty set rather than failing the login: the session then simply renders
// the least-privileged surface.
func (s *Service) Login(ctx context.Context, username, password string) (backend.LoginResult, []string, error) {
	result, err := s.upstream.Login(ctx, username, password)
	if err != nil {
		return backend.LoginResult{}, nil, err
	}

	info, err := s.upstream.UserInfo(ctx, result.Token)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("fetch permissions after login", slog.Any("error", err))
		}
		return result, nil, nil
	}
	return result, info.Permissions.PermissionCodes, nil
}

// Register forwards a registration request upstream.
func (s *Service) Register(ctx context.Context, req backend.RegisterRequest) error {
	return s.upstream.Register(ctx, req)
}
