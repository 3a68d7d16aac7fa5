package module

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	authorization = "Authorization"
	actorHeader   = "X-Actor"
)

var (
	ErrMissingToken = errors.New("authorization token not found")
	ErrInvalidToken = errors.New("invalid authorization token")
)

type actorKey struct{}

// WithActor returns a context carrying the user performing the request.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Actor returns the user stored by the auth middleware, or "".
func Actor(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// TokenVerifier resolves the actor of an HS256 bearer token from its sub claim.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

func (v *TokenVerifier) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// AuthMiddleware puts the request actor in the context. In insecure mode the
// token is not verified and the actor is read from the X-Actor header.
func AuthMiddleware(verifier *TokenVerifier, insecure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if insecure {
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), r.Header.Get(actorHeader))))
				return
			}

			token, err := accessTokenFromHeader(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			actor, err := verifier.Verify(token)
			if err != nil {
				logrus.Debugf("rejected token: %v", err)
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func accessTokenFromHeader(r *http.Request) (string, error) {
	val := r.Header.Get(authorization)
	if val == "" {
		return "", ErrMissingToken
	}

	token, ok := strings.CutPrefix(val, "Bearer ")
	if !ok || token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}
