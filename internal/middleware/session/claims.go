package session

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the session cookie carries. RegisteredClaims.ID holds the session id.
type Claims struct {
	CustomerID   uint   `json:"cid,omitempty"`
	CustomerName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func Sign(s *Session, secret []byte) (string, error) {
	claims := Claims{
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID: s.ID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func Parse(tokenStr string, secret []byte) (*Session, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.ID == "" {
		return nil, errors.New("invalid session token")
	}
	return &Session{ID: claims.ID, CustomerID: claims.CustomerID, CustomerName: claims.CustomerName}, nil
}

func createCookie(name, value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
