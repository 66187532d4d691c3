package repositorycache

import "context"

type freshReadContextKey struct{}

// WithFreshRead marks ctx so secondary queries skip the query cache and go
// straight to the store.
func WithFreshRead(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, freshReadContextKey{}, true)
}

func freshReadFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	fresh, _ := ctx.Value(freshReadContextKey{}).(bool)
	return fresh
}
