package webdav

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/cardpub/server/model"
	"github.com/xxxsen/common/webapi/proxyutil"
)

func (h *WebdavHandler) List(c *gin.Context, ctx context.Context, request interface{}) {
	req := request.(*model.ListRequest)
	cli, err := h.factory()
	if err != nil {
		proxyutil.FailJson(c, http.StatusInternalServerError, fmt.Errorf("create webdav client failed, err:%w", err))
		return
	}
	rs, err := cli.ListDirectory(ctx, req.Path)
	if err != nil {
		proxyutil.FailJson(c, errorStatus(err), fmt.Errorf("list directory failed, path:%s, err:%w", req.Path, err))
		return
	}
	proxyutil.SuccessJson(c, &model.ListResponse{
		Files:   rs.Files,
		Folders: rs.Folders,
	})
}
