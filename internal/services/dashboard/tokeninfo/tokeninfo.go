// Package tokeninfo reads display details out of an access token.
//
// Tokens are issued and verified by the remote API. The dashboard never
// holds the signing key, so claims read here are for display only and must
// not be used for authorization.
package tokeninfo

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
)

// Info is the displayable part of an access token.
type Info struct {
	UserID    string    `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Subject   string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	TokenType string    `json:"token_type,omitempty" yaml:"token_type,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitzero" yaml:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero" yaml:"expires_at,omitempty"`
}

type accessClaims struct {
	jwt.RegisteredClaims
	UserID    any    `json:"user_id"`
	TokenType string `json:"token_type"`
}

// Inspect decodes token claims without verifying the signature.
func Inspect(token string) (Info, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Info{}, apperrors.E(apperrors.KindInvalidInput, "access token is required")
	}
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{}, apperrors.Wrap(apperrors.KindInvalidInput, "access token is not a JWT", err)
	}

	info := Info{
		UserID:    formatUserID(claims.UserID),
		Subject:   claims.Subject,
		TokenType: claims.TokenType,
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.UTC()
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.UTC()
	}
	return info, nil
}

// Expired reports whether the token carried an expiry that is not after now.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !i.ExpiresAt.After(now)
}

// Identity is the best available label for the token's user.
func (i Info) Identity() string {
	switch {
	case i.UserID != "":
		return "user " + i.UserID
	case i.Subject != "":
		return i.Subject
	default:
		return "unknown user"
	}
}

func formatUserID(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
