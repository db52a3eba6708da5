package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/golang-jwt/jwt/v5"
)

// Algorithm constants for JWT signing methods
const (
	AlgorithmHS256 = "HS256"
	AlgorithmRS256 = "RS256"
	AlgorithmES256 = "ES256"
)

// ErrNoVerificationMethod is returned when a token needs a key source the verifier was not given
var ErrNoVerificationMethod = errors.New("no verification method configured for token")

// JWTHeader represents the parsed JWT header
type JWTHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Typ string `json:"typ,omitempty"`
}

// Claims represents the JWT claims we care about. Subject is the caller DID.
type Claims struct {
	jwt.RegisteredClaims
}

// KeyFetcher resolves the public key for a token's key ID
type KeyFetcher interface {
	FetchPublicKey(ctx context.Context, kid string) (interface{}, error)
}

// Verifier checks bearer tokens.
// Tokens without a kid are HS256 tokens signed with the shared secret.
// Tokens with a kid must be asymmetric and are checked against the key fetcher.
type Verifier struct {
	keys   KeyFetcher
	secret []byte
}

// NewVerifier creates a verifier. Either argument may be empty, which disables
// that verification path.
func NewVerifier(secret []byte, keys KeyFetcher) *Verifier {
	return &Verifier{
		secret: secret,
		keys:   keys,
	}
}

// stripBearerPrefix removes the "Bearer " prefix from a token string
func stripBearerPrefix(tokenString string) string {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	return strings.TrimSpace(tokenString)
}

// ParseJWTHeader extracts and parses the JWT header from a token string
func ParseJWTHeader(tokenString string) (*JWTHeader, error) {
	tokenString = stripBearerPrefix(tokenString)

	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid JWT format: expected 3 parts, got %d", len(parts))
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWT header: %w", err)
	}

	var header JWTHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse JWT header: %w", err)
	}

	return &header, nil
}

// Verify checks the token's signature and claims and returns the verified claims.
//
// SECURITY: the verification path is chosen by the presence of a kid, never by the
// alg header alone, so a public key can never be replayed as an HMAC secret.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	tokenString = stripBearerPrefix(tokenString)

	header, err := ParseJWTHeader(tokenString)
	if err != nil {
		return nil, err
	}

	if header.Kid == "" {
		if header.Alg != AlgorithmHS256 {
			return nil, fmt.Errorf("tokens without kid must use HS256, got %s", header.Alg)
		}
		return v.verifyHS256(tokenString)
	}

	if header.Alg == AlgorithmHS256 {
		return nil, fmt.Errorf("HS256 tokens with kid must use asymmetric verification")
	}
	return v.verifyAsymmetric(ctx, tokenString, header.Kid)
}

// verifyHS256 verifies a JWT using HMAC-SHA256 with the shared secret
func (v *Verifier) verifyHS256(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("HS256 verification failed: %w", ErrNoVerificationMethod)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("HS256 verification failed: %w", err)
	}

	return verifiedClaims(token)
}

// verifyAsymmetric verifies a JWT using RSA or ECDSA with a public key from the JWKS
func (v *Verifier) verifyAsymmetric(ctx context.Context, tokenString, kid string) (*Claims, error) {
	if v.keys == nil {
		return nil, fmt.Errorf("asymmetric verification failed: %w", ErrNoVerificationMethod)
	}

	publicKey, err := v.keys.FetchPublicKey(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch public key: %w", err)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("asymmetric verification failed: %w", err)
	}

	return verifiedClaims(token)
}

func verifiedClaims(token *jwt.Token) (*Claims, error) {
	if !token.Valid {
		return nil, fmt.Errorf("token signature invalid")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid claims type")
	}

	if err := validateClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// validateClaims performs checks golang-jwt leaves to the caller
func validateClaims(claims *Claims) error {
	if claims.Subject == "" {
		return fmt.Errorf("missing 'sub' claim (user DID)")
	}
	if _, err := syntax.ParseDID(claims.Subject); err != nil {
		return fmt.Errorf("invalid DID format in 'sub' claim: %w", err)
	}
	return nil
}

// IssueHS256 signs a short-lived token for did with the shared secret.
// Used by the dev login endpoint and the gentoken command.
func IssueHS256(secret []byte, did string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoVerificationMethod
	}
	if _, err := syntax.ParseDID(did); err != nil {
		return "", fmt.Errorf("invalid DID: %w", err)
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   did,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
