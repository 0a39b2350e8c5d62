package http

import (
	"context"
	"net/http"

	"github.com/km-arc/go-ioc/framework/container"
)

type scopeKey struct{}

// WithContainer stores c in ctx.
func WithContainer(ctx context.Context, c *container.Container) context.Context {
	return context.WithValue(ctx, scopeKey{}, c)
}

// FromContext returns the request container stored in ctx.
func FromContext(ctx context.Context) (*container.Container, bool) {
	c, ok := ctx.Value(scopeKey{}).(*container.Container)
	return c, ok && c != nil
}

// RequestScope gives every request its own inner container of root and
// disposes it once the handler returns, closing whatever the request
// resolved with ContainerScope or FactoryScope.
//
//	r.Use(gohttp.RequestScope(app.Container))
//
//	func show(w http.ResponseWriter, r *http.Request) {
//	    svc, err := container.Resolve[*Service](gohttp.NewRequest(r).Container())
//	}
func RequestScope(root *container.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := root.CreateInnerContainer()
			defer func() {
				if err := scope.Dispose(); err != nil {
					req := NewRequest(r)
					root.Logger().Warn("http: request scope dispose failed",
						"method", req.Method(), "path", req.Path(), "error", err)
				}
			}()

			next.ServeHTTP(w, r.WithContext(WithContainer(r.Context(), scope)))
		})
	}
}
