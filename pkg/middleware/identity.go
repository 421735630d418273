package middleware

import (
	"context"
	"net/http"
	"slices"
	apperrors "suitespot/pkg/errors"
	httputil "suitespot/pkg/http"
	"suitespot/pkg/logger"
	"suitespot/pkg/model"
	"strings"
)

const (
	ActorKey contextKey = "actor"

	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

// Identity reads the caller asserted by the gateway. Requests without identity
// headers pass through anonymously; handlers that need a caller use RequireActor.
func Identity(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			role := strings.ToLower(strings.TrimSpace(r.Header.Get(UserRoleHeader)))

			if userID == "" && role == "" {
				next.ServeHTTP(w, r)
				return
			}

			if userID == "" || !model.IsValidRole(role) {
				log.Warn("Rejected malformed identity headers",
					"request_id", RequestIDFromContext(r.Context()),
					"user_id", userID,
					"role", role,
				)
				httputil.WriteError(w, apperrors.Unauthorized("Invalid identity headers"))
				return
			}

			actor := model.Actor{UserID: userID, Role: role}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(model.Actor)
	return actor, ok
}

// RequireActor returns the caller, or an Unauthorized error when the request is
// anonymous and a Forbidden error when the caller's role is not in roles.
// An empty roles list accepts any authenticated caller.
func RequireActor(r *http.Request, roles ...string) (model.Actor, error) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		return model.Actor{}, apperrors.Unauthorized("Authentication required")
	}
	if len(roles) > 0 && !slices.Contains(roles, actor.Role) {
		return model.Actor{}, apperrors.Forbidden("Your role is not allowed to perform this action")
	}
	return actor, nil
}
