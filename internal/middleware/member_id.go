package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ctxMemberKey contextKey = "member"

// MemberIDHeader carries the caller's opaque member identifier. The
// gateway in front of this service authenticates the member and sets the
// header; this service never sees credentials.
const MemberIDHeader = "X-Member-ID"

// MemberID extracts the member identifier from the request and sets it
// into context, rejecting requests that carry none.
func MemberID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(MemberIDHeader))
		if id == "" {
			http.Error(w, `{"error":"missing `+MemberIDHeader+` header"}`, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxMemberKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MemberFromCtx returns the member id or "".
func MemberFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(ctxMemberKey).(string)
	return id
}

// WithMember returns a context carrying the given member id.
func WithMember(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxMemberKey, id)
}
