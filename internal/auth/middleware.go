package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const profileIDKey contextKey = "profile_id"

// ProfileHeader names the header a client uses to say which profile it is
// acting as.
const ProfileHeader = "X-Profile-ID"

// Middleware stores the caller's profile id, when sent, in the request
// context. It never rejects a request; handlers decide whether an id is
// required.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := strings.TrimSpace(r.Header.Get(ProfileHeader)); id != "" {
				r = r.WithContext(WithProfileID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithProfileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, profileIDKey, id)
}

// ProfileID returns the caller's profile id or "".
func ProfileID(ctx context.Context) string {
	if id, ok := ctx.Value(profileIDKey).(string); ok {
		return id
	}
	return ""
}
