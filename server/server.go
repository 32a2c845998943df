package server

import (
	"fmt"

	"github.com/xxxsen/cardpub/server/handler/publish"
	"github.com/xxxsen/cardpub/server/handler/webdav"
	"github.com/xxxsen/cardpub/server/middleware"
	"github.com/xxxsen/cardpub/server/model"
	"github.com/xxxsen/common/webapi"
	"github.com/xxxsen/common/webapi/auth"
	webmiddleware "github.com/xxxsen/common/webapi/middleware"
	"github.com/xxxsen/common/webapi/proxyutil"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

type Server struct {
	c      *config
	engine webapi.IWebEngine
}

func New(bind string, opts ...Option) (*Server, error) {
	c := applyOpts(opts...)
	if c.factory == nil {
		return nil, fmt.Errorf("no webdav client factory found")
	}
	svr := &Server{c: c}
	var err error
	svr.engine, err = webapi.NewEngine("/", bind, webapi.WithAuth(auth.MapUserMatch(c.userMap)), webapi.WithRegister(svr.initAPI))
	if err != nil {
		return nil, err
	}
	return svr, nil
}

func (s *Server) initAPI(router *gin.RouterGroup) {
	mustAuthMiddleware := webmiddleware.MustAuthMiddleware()
	apiRouter := router.Group("/api", mustAuthMiddleware)
	registerWebdavAPI(apiRouter.Group("/webdav"), webdav.NewWebdavHandler(s.c.factory), s.c.uploadLimit)
	publishHandler := publish.NewPublishHandler(s.c.factory, s.c.publishOpts...)
	apiRouter.POST("/publish", proxyutil.WrapBizFunc(publishHandler.Publish, &model.PublishRequest{}))
}

func registerWebdavAPI(router *gin.RouterGroup, h *webdav.WebdavHandler, uploadLimit int64) {
	router.GET("/list", proxyutil.WrapBizFunc(h.List, &model.ListRequest{}))
	router.GET("/file", proxyutil.WrapBizFunc(h.GetFile, &model.GetFileRequest{}))
	router.POST("/upload", middleware.BodyLimitMiddleware(uploadLimit), proxyutil.WrapBizFunc(h.Upload, &model.UploadRequest{}))
	router.POST("/delete", proxyutil.WrapBizFunc(h.Delete, &model.DeleteRequest{}))
	router.POST("/mkdir", proxyutil.WrapBizFunc(h.Mkdir, &model.MkdirRequest{}))
	router.POST("/move", proxyutil.WrapBizFunc(h.Move, &model.MoveRequest{}))
}

func (s *Server) Run() error {
	return s.engine.Run()
}
