package auth

import (
	"crypto/rsa"
	"errors"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is what the platform's identity service puts into every bearer
// token. Token issuance and password handling live in that service; this
// package only verifies.
type Claims struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	jwt.RegisteredClaims
}

// Verifier checks bearer tokens. It verifies RS256 against the identity
// service's public key when one is configured, or HS256 against a shared
// secret (dev and test setups).
type Verifier struct {
	pub    *rsa.PublicKey
	secret []byte
}

func NewVerifier(pubKeyPath, hmacSecret string) (*Verifier, error) {
	v := &Verifier{}
	if hmacSecret != "" {
		v.secret = []byte(hmacSecret)
	}
	if pubKeyPath != "" {
		b, err := os.ReadFile(pubKeyPath)
		if err != nil {
			return nil, err
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM(b)
		if err != nil {
			return nil, err
		}
		v.pub = pub
	}
	if v.pub == nil && v.secret == nil {
		return nil, errors.New("auth: neither public key nor hmac secret configured")
	}
	return v, nil
}

func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodRSA:
			if v.pub == nil {
				return nil, ErrInvalidToken
			}
			return v.pub, nil
		case *jwt.SigningMethodHMAC:
			if v.secret == nil {
				return nil, ErrInvalidToken
			}
			return v.secret, nil
		default:
			return nil, ErrInvalidToken
		}
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.CompanyID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
