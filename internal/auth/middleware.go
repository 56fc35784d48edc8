package auth

import (
	"context"
	"net/http"
	"strings"

	apperrors "studysphere/pkg/errors"
	httputil "studysphere/pkg/http"
	"studysphere/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFromContext returns the verified principal set by RequireAuth.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// RequireAuth verifies the bearer token and injects the principal into the
// request context before calling the wrapped handler.
func RequireAuth(verifier Verifier, log *logger.Logger, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token, ok := bearerToken(r)
		if !ok {
			if err := httputil.WriteError(w, apperrors.Unauthorized("missing bearer token")); err != nil {
				log.Error("failed to write error response", "middleware", "RequireAuth", "error", err)
			}
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				log.Error("failed to write error response", "middleware", "RequireAuth", "error", writeErr)
			}
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireRole wraps RequireAuth and additionally checks the principal's role.
func RequireRole(verifier Verifier, log *logger.Logger, role string, next httprouter.Handle) httprouter.Handle {
	return RequireAuth(verifier, log, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal, _ := PrincipalFromContext(r.Context())
		if principal.Role != role {
			if err := httputil.WriteError(w, apperrors.Forbidden("insufficient role")); err != nil {
				log.Error("failed to write error response", "middleware", "RequireRole", "error", err)
			}
			return
		}
		next(w, r, ps)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
