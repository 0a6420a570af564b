package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified caller behind a bearer token.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// RoleAdmin marks callers allowed to use admin routes.
const RoleAdmin = "admin"

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Verifier resolves a bearer token to an identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

var (
	ErrInvalidToken  = errors.New("invalid token")
	errMissingSecret = errors.New("jwt secret not configured")
)

// AppMetadata carries server-assigned attributes such as the admin role.
type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

// Claims represents the identity contained in a JWT.
type Claims struct {
	Email       string      `json:"email,omitempty"`
	Role        string      `json:"role,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

// role prefers app_metadata.role; the top-level role only counts when it is admin.
func (c Claims) role() string {
	if c.AppMetadata.Role != "" {
		return c.AppMetadata.Role
	}
	if c.Role == RoleAdmin {
		return c.Role
	}
	return ""
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	admins map[string]struct{}
	now    func() time.Time
}

// NewJWTVerifier builds a verifier. User IDs in admins are granted the admin role.
func NewJWTVerifier(secret string, admins []string) (*JWTVerifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errMissingSecret
	}
	return &JWTVerifier{
		secret: []byte(secret),
		admins: adminSet(admins),
		now:    time.Now,
	}, nil
}

// Verify parses token and returns its identity.
func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrInvalidToken
	}
	return withAdmin(Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.role(),
	}, v.admins), nil
}

// Sign issues an HS256 token for the identity, valid for ttl.
func (v *JWTVerifier) Sign(id Identity, ttl time.Duration) (string, error) {
	if strings.TrimSpace(id.UserID) == "" {
		return "", errors.New("user id is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := v.now().UTC()
	claims := Claims{
		Email:       id.Email,
		Role:        "authenticated",
		AppMetadata: AppMetadata{Role: id.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func adminSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			out[trimmed] = struct{}{}
		}
	}
	return out
}

func withAdmin(id Identity, admins map[string]struct{}) Identity {
	if _, ok := admins[id.UserID]; ok {
		id.Role = RoleAdmin
	}
	return id
}
