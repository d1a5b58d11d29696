// internal/auth/context.go
//
// Subject helper for request contexts.
//
// Usage
// -----
//     // Middleware attaches the verified token subject.
//     ctx = auth.WithUser(ctx, "user-123")
//
//     // Downstream code retrieves it.
//     sub, ok := auth.UserID(ctx)   // "user-123", true
//
// Notes
// -----
// • Stores the JWT `sub` claim directly in context.
// • Oxford commas, two spaces after periods.

package auth

import "context"

// userKey is unexported to avoid context-key collisions.
type userKey struct{}

// WithUser returns a new context carrying the given subject.
func WithUser(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, userKey{}, subject)
}

// UserID extracts the subject from ctx.  It returns ("", false) if none is
// set.
func UserID(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(userKey{}).(string)
	return sub, ok && sub != ""
}
