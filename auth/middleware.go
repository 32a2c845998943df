package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type userKeyType struct{}

var userKey = userKeyType{}

func UserFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userKey).(string)
	return v, ok
}

func (d *DigestAuth) reject(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, ErrNoAuth) {
		logutil.GetLogger(r.Context()).Debug("digest auth failed", zap.String("method", r.Method),
			zap.String("path", r.URL.Path), zap.Error(err))
	}
	w.Header().Set("WWW-Authenticate", d.Challenge(errors.Is(err, ErrStaleNonce)))
	w.WriteHeader(http.StatusUnauthorized)
}

// Middleware is the gin form of Wrap.
func (d *DigestAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user, err := d.Verify(ctx, c.Request)
		if err != nil {
			d.reject(c.Writer, c.Request, err)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(ctx, userKey, user))
	}
}

func (d *DigestAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := d.Verify(r.Context(), r)
		if err != nil {
			d.reject(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}
