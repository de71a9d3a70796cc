package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/infrastructure/config"
)

// stateClaims carries the authorization context through the OAuth redirect.
// The registered expiry claim enforces the TTL so a stolen state value goes
// stale on its own.
type stateClaims struct {
	jwt.RegisteredClaims
	CompanyID string `json:"company_id"`
	UserID    string `json:"user_id"`
	Kind      string `json:"kind"`
}

// StateTokenCodec signs and verifies OAuth state tokens. The codec keeps no
// server-side state; everything needed to validate a callback is inside the
// token itself.
type StateTokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

var _ platform.StateCodec = (*StateTokenCodec)(nil)

// NewStateTokenCodec creates a codec from configuration.
func NewStateTokenCodec(cfg config.StateTokenConfig, issuer string) *StateTokenCodec {
	return &StateTokenCodec{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: issuer,
		now:    time.Now,
	}
}

// Encode signs the authorization context into a compact state string.
func (c *StateTokenCodec) Encode(authCtx platform.AuthorizationContext) (string, error) {
	issuedAt := authCtx.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = c.now()
	}
	nonce := authCtx.Nonce
	if nonce == "" {
		nonce = uuid.New().String()
	}

	claims := &stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			Issuer:    c.issuer,
			Subject:   authCtx.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
		CompanyID: authCtx.CompanyID.String(),
		UserID:    authCtx.UserID.String(),
		Kind:      authCtx.Kind.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies the signature and expiry and recovers the authorization
// context. Expired tokens map to platform.ErrStateExpired, everything else
// that fails maps to platform.ErrStateInvalid.
func (c *StateTokenCodec) Decode(state string) (*platform.AuthorizationContext, error) {
	token, err := jwt.ParseWithClaims(state, &stateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, platform.ErrStateInvalid
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, platform.ErrStateExpired
		}
		return nil, platform.ErrStateInvalid
	}

	claims, ok := token.Claims.(*stateClaims)
	if !ok || !token.Valid {
		return nil, platform.ErrStateInvalid
	}

	companyID, err := uuid.Parse(claims.CompanyID)
	if err != nil {
		return nil, platform.ErrStateInvalid
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, platform.ErrStateInvalid
	}
	kind := platform.ResourceKind(claims.Kind)
	if !kind.IsValid() {
		return nil, platform.ErrStateInvalid
	}

	authCtx := &platform.AuthorizationContext{
		CompanyID: companyID,
		UserID:    userID,
		Kind:      kind,
		Nonce:     claims.ID,
	}
	if claims.IssuedAt != nil {
		authCtx.IssuedAt = claims.IssuedAt.Time
	}
	return authCtx, nil
}
