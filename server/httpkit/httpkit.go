package httpkit

import (
	"fmt"
	"mime"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/cardpub/davclient"
	"github.com/xxxsen/cardpub/utils"
)

const (
	defaultTextContentType = "text/plain; charset=utf-8"
)

func DetermineMimeType(filename string) string {
	ext := path.Ext(filename)
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}
	return mimeType
}

// PayloadContentType guesses the content type of a payload fetched from p,
// text payloads are always served as plain text.
func PayloadContentType(p string, payload davclient.Payload) string {
	if !payload.IsBinary() {
		return defaultTextContentType
	}
	return DetermineMimeType(p)
}

func SetDefaultDownloadHeader(c *gin.Context, p string, payload davclient.Payload) {
	c.Writer.Header().Set("Content-Type", PayloadContentType(p, payload))
	c.Writer.Header().Set("Cache-Control", "private, max-age=60")
	c.Writer.Header().Set("ETag", fmt.Sprintf("W/\"%s\"", utils.ContentChecksum(payload.Bytes())))
}
