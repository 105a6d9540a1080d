package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const subjectContextKey contextKey = "auth_subject"

// SubjectFromContext returns the authenticated user id attached by
// Middleware, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectContextKey).(string)
	return subject, ok
}

// Middleware gates protected routes behind a bearer token. An absent token
// and an invalid one get distinct messages; all verification failures behind
// "Token is not valid" stay a single indistinguishable case.
func Middleware(tokens *TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		subject, err := tokens.Verify(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Token is not valid")
			return
		}

		ctx := context.WithValue(r.Context(), subjectContextKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
