package webdav

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/cardpub/server/httpkit"
	"github.com/xxxsen/cardpub/server/model"
	"github.com/xxxsen/common/webapi/proxyutil"
)

func (h *WebdavHandler) GetFile(c *gin.Context, ctx context.Context, request interface{}) {
	req := request.(*model.GetFileRequest)
	cli, err := h.factory()
	if err != nil {
		proxyutil.FailJson(c, http.StatusInternalServerError, fmt.Errorf("create webdav client failed, err:%w", err))
		return
	}
	payload, err := cli.GetFile(ctx, req.Path)
	if err != nil {
		proxyutil.FailJson(c, errorStatus(err), fmt.Errorf("get file failed, path:%s, err:%w", req.Path, err))
		return
	}
	httpkit.SetDefaultDownloadHeader(c, req.Path, payload)
	c.Data(http.StatusOK, httpkit.PayloadContentType(req.Path, payload), payload.Bytes())
}

func (h *WebdavHandler) Upload(c *gin.Context, ctx context.Context, request interface{}) {
	req := request.(*model.UploadRequest)
	f, err := req.File.Open()
	if err != nil {
		proxyutil.FailJson(c, http.StatusBadRequest, fmt.Errorf("open file fail, err:%w", err))
		return
	}
	defer f.Close()
	data := make([]byte, req.File.Size)
	if _, err := io.ReadFull(f, data); err != nil {
		proxyutil.FailJson(c, http.StatusBadRequest, fmt.Errorf("read file fail, err:%w", err))
		return
	}
	cli, err := h.factory()
	if err != nil {
		proxyutil.FailJson(c, http.StatusInternalServerError, fmt.Errorf("create webdav client failed, err:%w", err))
		return
	}
	rs, err := cli.UploadFile(ctx, req.Path, data)
	if err != nil {
		proxyutil.FailJson(c, errorStatus(err), fmt.Errorf("upload file failed, path:%s, err:%w", req.Path, err))
		return
	}
	proxyutil.SuccessJson(c, &model.UploadResponse{UploadResult: rs})
}
