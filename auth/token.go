package auth

import (
	"strings"
	"time"

	"recipebook/common"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultTokenTTL = 24 * time.Hour

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for userID, valid from now for the configured TTL.
func (t *Tokens) Issue(userID primitive.ObjectID) (string, error) {
	now := t.now()
	claims := Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks signature and expiry and returns the embedded user id.
// A bad signature or payload yields common.ErrInvalidToken; a token past its
// expiry yields common.ErrExpiredToken.
func (t *Tokens) Verify(tokenString string) (primitive.ObjectID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return primitive.NilObjectID, common.ErrInvalidToken
	}

	if claims.ExpiresAt == nil {
		return primitive.NilObjectID, common.ErrInvalidToken
	}
	if t.now().After(claims.ExpiresAt.Time) {
		return primitive.NilObjectID, common.ErrExpiredToken
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, common.ErrInvalidToken
	}
	return id, nil
}

// ParseAuthorizationHeader extracts the credential from a scheme-prefixed
// header such as "Bearer <token>".
func ParseAuthorizationHeader(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return "", common.ErrMalformedHeader
	}
	return fields[1], nil
}
