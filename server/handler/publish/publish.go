package publish

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/cardpub/davclient"
	"github.com/xxxsen/cardpub/publish"
	"github.com/xxxsen/cardpub/server/model"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi/proxyutil"
	"go.uber.org/zap"
)

type PublishHandler struct {
	factory davclient.Factory
	opts    []publish.Option
}

func NewPublishHandler(f davclient.Factory, opts ...publish.Option) *PublishHandler {
	return &PublishHandler{factory: f, opts: opts}
}

func (h *PublishHandler) Publish(c *gin.Context, ctx context.Context, request interface{}) {
	req := request.(*model.PublishRequest)
	items := req.Items
	if len(req.LocalDir) != 0 {
		collected, err := publish.CollectDir(req.LocalDir, req.RemoteRoot)
		if err != nil {
			proxyutil.FailJson(c, http.StatusBadRequest, fmt.Errorf("collect local dir failed, err:%w", err))
			return
		}
		items = append(items, collected...)
	}
	if len(items) == 0 {
		proxyutil.FailJson(c, http.StatusBadRequest, fmt.Errorf("no publish item found"))
		return
	}
	p, err := publish.New(h.factory, h.opts...)
	if err != nil {
		proxyutil.FailJson(c, http.StatusInternalServerError, fmt.Errorf("create publisher failed, err:%w", err))
		return
	}
	rp, err := p.Publish(ctx, items)
	if rp == nil {
		proxyutil.FailJson(c, http.StatusInternalServerError, fmt.Errorf("publish failed, err:%w", err))
		return
	}
	if err != nil {
		// 部分失败时仍返回报告, 失败明细在items里
		logutil.GetLogger(ctx).Error("publish finish with error", zap.Error(err))
	}
	proxyutil.SuccessJson(c, &model.PublishResponse{Report: rp})
}
