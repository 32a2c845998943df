package davclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	MethodPropfind = "PROPFIND"
	MethodMkcol    = "MKCOL"
	MethodMove     = "MOVE"
)

type UploadResult struct {
	Success       bool        `json:"success"`
	StatusCode    int         `json:"status_code"`
	StatusMessage string      `json:"status_message"`
	Headers       http.Header `json:"headers"`
}

func propfindHeader(depth string) http.Header {
	h := http.Header{}
	h.Set("Depth", depth)
	h.Set("Content-Type", "application/xml; charset=utf-8")
	return h
}

func (c *Client) ListDirectory(ctx context.Context, dir string) (*Listing, error) {
	rsp, err := c.authenticatedRequest(ctx, MethodPropfind, dir, propfindHeader("1"), []byte(propfindBody))
	if err != nil {
		return nil, err
	}
	if rsp.StatusCode != http.StatusMultiStatus {
		return nil, newWebDavError("list directory", dir, rsp)
	}
	return parseListing(c.requestPath(dir), rsp.Body.Bytes())
}

// Exists probes a single resource with a depth 0 PROPFIND.
func (c *Client) Exists(ctx context.Context, file string) (bool, error) {
	rsp, err := c.authenticatedRequest(ctx, MethodPropfind, file, propfindHeader("0"), []byte(propfindBody))
	if err != nil {
		return false, err
	}
	switch rsp.StatusCode {
	case http.StatusMultiStatus, http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, newWebDavError("stat entry", file, rsp)
}

func (c *Client) DeleteEntry(ctx context.Context, file string) error {
	rsp, err := c.authenticatedRequest(ctx, http.MethodDelete, file, http.Header{}, nil)
	if err != nil {
		return err
	}
	if rsp.StatusCode != http.StatusOK && rsp.StatusCode != http.StatusNoContent {
		return newWebDavError("delete entry", file, rsp)
	}
	return nil
}

// CreateDirectory issues MKCOL. 405 means the collection already exists. On
// 409 the directory is listed, a successful listing also means it exists.
func (c *Client) CreateDirectory(ctx context.Context, dir string) error {
	rsp, err := c.authenticatedRequest(ctx, MethodMkcol, dir, http.Header{}, nil)
	if err != nil {
		return err
	}
	switch rsp.StatusCode {
	case http.StatusCreated, http.StatusMethodNotAllowed:
		return nil
	case http.StatusConflict:
		if _, lerr := c.ListDirectory(ctx, dir); lerr != nil {
			logutil.GetLogger(ctx).Debug("verify directory after mkcol conflict failed", zap.String("dir", dir), zap.Error(lerr))
			return newWebDavError("create directory", dir, rsp)
		}
		return nil
	}
	return newWebDavError("create directory", dir, rsp)
}

// CreateDirectoryAll creates dir and every missing ancestor, one MKCOL per level.
func (c *Client) CreateDirectoryAll(ctx context.Context, dir string) error {
	items := strings.Split(strings.Trim(dir, "/"), "/")
	cur := "/"
	for _, item := range items {
		if len(item) == 0 {
			continue
		}
		cur += item + "/"
		if err := c.CreateDirectory(ctx, cur); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) MoveEntry(ctx context.Context, src string, dst string) error {
	h := http.Header{}
	h.Set("Destination", dst)
	h.Set("Overwrite", "T")
	rsp, err := c.authenticatedRequest(ctx, MethodMove, src, h, nil)
	if err != nil {
		return err
	}
	if rsp.StatusCode != http.StatusOK && rsp.StatusCode != http.StatusCreated {
		return newWebDavError("move entry", src, rsp)
	}
	return nil
}

func (c *Client) GetFile(ctx context.Context, file string) (Payload, error) {
	rsp, err := c.authenticatedRequest(ctx, http.MethodGet, file, http.Header{}, nil)
	if err != nil {
		return Payload{}, err
	}
	if rsp.StatusCode != http.StatusOK {
		return Payload{}, newWebDavError("get file", file, rsp)
	}
	return rsp.Body, nil
}

// UploadFile creates the parent directory first. That step is best effort:
// the directory may already exist, so a failure is only logged before PUT.
func (c *Client) UploadFile(ctx context.Context, file string, data []byte) (*UploadResult, error) {
	if parent := parentDirectory(file); len(parent) != 0 {
		if err := c.CreateDirectory(ctx, parent); err != nil {
			logutil.GetLogger(ctx).Warn("ensure parent directory failed, continue upload",
				zap.String("parent", parent), zap.Int("status", StatusCode(err)), zap.Error(err))
		}
	}
	if data == nil {
		data = []byte{}
	}
	h := http.Header{}
	h.Set("Content-Type", "application/octet-stream")
	rsp, err := c.authenticatedRequest(ctx, http.MethodPut, file, h, data)
	if err != nil {
		return nil, err
	}
	switch rsp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
	default:
		return nil, newWebDavError("upload file", file, rsp)
	}
	return &UploadResult{
		Success:       true,
		StatusCode:    rsp.StatusCode,
		StatusMessage: rsp.Status,
		Headers:       rsp.Header,
	}, nil
}

// parentDirectory: a path ending with '/' is its own parent, otherwise the
// prefix up to and including the last '/'. Returns "" when there is nothing
// to create.
func parentDirectory(p string) string {
	var parent string
	if strings.HasSuffix(p, "/") {
		parent = p
	} else {
		idx := strings.LastIndex(p, "/")
		if idx < 0 {
			return ""
		}
		parent = p[:idx+1]
	}
	if parent == "/" || parent == p {
		return ""
	}
	return parent
}
