// internal/common/auth/sessions.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "hiring-pipeline/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// Roles carried by staff sessions. User records themselves are synced from
// the identity provider by an external process; this package only resolves
// an opaque bearer token to the session it belongs to.
const (
	RoleAdmin         = "admin"
	RoleHiringManager = "hiring_manager"
)

// StaffUser is the authenticated subject of a staff request.
type StaffUser struct {
	ID    string `json:"userId"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// CanReviewAssessments reports whether the user may decide assessment reviews.
func (u *StaffUser) CanReviewAssessments() bool {
	return u.Role == RoleAdmin
}

// CanManageApplications reports whether the user holds application access.
func (u *StaffUser) CanManageApplications() bool {
	return u.Role == RoleAdmin || u.Role == RoleHiringManager
}

// SessionVerifier resolves bearer tokens to staff users.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*StaffUser, error)
}

// RedisSessionVerifier looks sessions up in Redis under session:<token>.
// Sessions are written by the identity-provider sync, with a TTL.
type RedisSessionVerifier struct {
	client *redis.Client
}

func NewRedisSessionVerifier(client *redis.Client) *RedisSessionVerifier {
	return &RedisSessionVerifier{client: client}
}

func (v *RedisSessionVerifier) Verify(ctx context.Context, token string) (*StaffUser, error) {
	if token == "" {
		return nil, apperrors.NewUnauthenticatedError("missing bearer token")
	}

	raw, err := v.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewUnauthenticatedError("session not found or expired")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("session lookup", err)
	}

	var user StaffUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, apperrors.NewUnauthenticatedError("malformed session record")
	}
	if user.ID == "" || user.Role == "" {
		return nil, apperrors.NewUnauthenticatedError("incomplete session record")
	}

	return &user, nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
