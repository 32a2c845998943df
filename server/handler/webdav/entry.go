package webdav

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/cardpub/server/model"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi/proxyutil"
	"go.uber.org/zap"
)

func (h *WebdavHandler) Delete(c *gin.Context, ctx context.Context, request interface{}) {
	req := request.(*model.DeleteRequest)
	cli, err := h.factory()
	if err != nil {
		proxyutil.FailJson(c, http.StatusInternalServerError, fmt.Errorf("create webdav client failed, err:%w", err))
		return
	}
	if err := cli.DeleteEntry(ctx, req.Path); err != nil {
		proxyutil.FailJson(c, errorStatus(err), fmt.Errorf("delete entry failed, path:%s, err:%w", req.Path, err))
		return
	}
	logutil.GetLogger(ctx).Info("delete entry succ", zap.String("path", req.Path))
	proxyutil.SuccessJson(c, &model.OpResponse{Success: true})
}

func (h *WebdavHandler) Mkdir(c *gin.Context, ctx context.Context, request interface{}) {
	req := request.(*model.MkdirRequest)
	cli, err := h.factory()
	if err != nil {
		proxyutil.FailJson(c, http.StatusInternalServerError, fmt.Errorf("create webdav client failed, err:%w", err))
		return
	}
	mkdir := cli.CreateDirectory
	if req.Recursive {
		mkdir = cli.CreateDirectoryAll
	}
	if err := mkdir(ctx, req.Path); err != nil {
		proxyutil.FailJson(c, errorStatus(err), fmt.Errorf("create directory failed, path:%s, err:%w", req.Path, err))
		return
	}
	proxyutil.SuccessJson(c, &model.OpResponse{Success: true})
}

func (h *WebdavHandler) Move(c *gin.Context, ctx context.Context, request interface{}) {
	req := request.(*model.MoveRequest)
	cli, err := h.factory()
	if err != nil {
		proxyutil.FailJson(c, http.StatusInternalServerError, fmt.Errorf("create webdav client failed, err:%w", err))
		return
	}
	if err := cli.MoveEntry(ctx, req.Source, req.Destination); err != nil {
		proxyutil.FailJson(c, errorStatus(err), fmt.Errorf("move entry failed, src:%s, dst:%s, err:%w", req.Source, req.Destination, err))
		return
	}
	logutil.GetLogger(ctx).Info("move entry succ", zap.String("src", req.Source), zap.String("dst", req.Destination))
	proxyutil.SuccessJson(c, &model.OpResponse{Success: true})
}
