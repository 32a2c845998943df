package davserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/cardpub/auth"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/net/webdav"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// Server is a digest protected WebDAV server, used to run the client
// against something real during development.
type Server struct {
	c      *config
	da     *auth.DigestAuth
	engine *gin.Engine
}

func New(opts ...Option) (*Server, error) {
	c := applyOpts(opts...)
	if len(c.users) == 0 {
		return nil, fmt.Errorf("no user found")
	}
	fs := webdav.NewMemFS()
	if len(c.root) != 0 {
		if err := os.MkdirAll(c.root, 0755); err != nil {
			return nil, fmt.Errorf("create root dir failed, root:%s, err:%w", c.root, err)
		}
		fs = webdav.Dir(c.root)
	}
	s := &Server{
		c:  c,
		da: auth.NewDigestAuth(auth.MapUserMatch(c.users), c.authOpts...),
	}
	h := &webdav.Handler{
		Prefix:     c.prefix,
		FileSystem: fs,
		LockSystem: webdav.NewMemLS(),
		Logger:     s.onDavEvent,
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), accessLog(), s.da.Middleware())
	// webdav方法较多且路径任意, 全部交给NoRoute, 同时避开gin的尾部斜杠重定向
	engine.NoRoute(gin.WrapH(h))
	s.engine = engine
	return s, nil
}

func (s *Server) onDavEvent(r *http.Request, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(r.Context()).Debug("webdav op failed", zap.String("method", r.Method),
		zap.String("path", r.URL.Path), zap.Error(err))
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		user, _ := auth.UserFromContext(c.Request.Context())
		logutil.GetLogger(c.Request.Context()).Debug("webdav request", zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path), zap.Int("status", c.Writer.Status()),
			zap.String("user", user), zap.Duration("cost", time.Since(start)))
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(bind string) error {
	logutil.GetLogger(context.Background()).Info("dev webdav server start", zap.String("bind", bind), zap.String("root", s.c.root),
		zap.String("realm", s.da.Realm()))
	return s.engine.Run(bind)
}
