package webhook

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/tesouraria/internal/http/render"
)

var errMissingBearer = errors.New("missing bearer token")

// Authenticator accepts requests carrying an HS256 token signed with secret,
// issued by issuer and not yet expired.
func Authenticator(secret []byte, issuer string) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)

	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearer(r)
			if err == nil {
				_, err = parser.ParseWithClaims(raw, &jwt.RegisteredClaims{}, keyFunc)
			}

			if err != nil {
				render.JSON(w, http.StatusUnauthorized, render.ErrorResponse{Code: "unauthorized", Message: err.Error()})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")

	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		return "", errMissingBearer
	}

	return token, nil
}
