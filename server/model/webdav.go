package model

import (
	"mime/multipart"

	"github.com/xxxsen/cardpub/davclient"
)

type ListRequest struct {
	Path string `form:"path" json:"path" binding:"required"`
}

type ListResponse struct {
	Files   []*davclient.FileEntry   `json:"files"`
	Folders []*davclient.FolderEntry `json:"folders"`
}

type GetFileRequest struct {
	Path string `form:"path" json:"path" binding:"required"`
}

type UploadRequest struct {
	Path string                `form:"path" binding:"required"`
	File *multipart.FileHeader `form:"file" binding:"required"`
}

type UploadResponse struct {
	*davclient.UploadResult
}

type DeleteRequest struct {
	Path string `form:"path" json:"path" binding:"required"`
}

type MkdirRequest struct {
	Path string `form:"path" json:"path" binding:"required"`
	// Recursive creates the missing ancestors too.
	Recursive bool `form:"recursive" json:"recursive"`
}

type MoveRequest struct {
	Source      string `form:"source" json:"source" binding:"required"`
	Destination string `form:"destination" json:"destination" binding:"required"`
}

type OpResponse struct {
	Success bool `json:"success"`
}
