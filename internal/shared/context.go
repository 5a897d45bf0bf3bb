package shared

import "context"

type orgContextKey struct{}

type userContextKey struct{}

// ContextWithOrg stores the authorised organisation id in context.
// Authorisation itself happens upstream; the engine only carries the result.
func ContextWithOrg(ctx context.Context, orgID int64) context.Context {
	return context.WithValue(ctx, orgContextKey{}, orgID)
}

// OrgFromContext extracts the organisation id from context, zero when absent.
func OrgFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(orgContextKey{}).(int64)
	return id
}

// ContextWithUser stores the acting user id in context.
func ContextWithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userContextKey{}, userID)
}

// UserFromContext extracts the acting user id from context, zero when absent.
func UserFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(userContextKey{}).(int64)
	return id
}
