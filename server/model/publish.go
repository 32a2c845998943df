package model

import "github.com/xxxsen/cardpub/publish"

// PublishRequest either lists items or names a local dir to collect them from.
type PublishRequest struct {
	Items      []*publish.Item `json:"items"`
	LocalDir   string          `json:"local_dir"`
	RemoteRoot string          `json:"remote_root"`
}

type PublishResponse struct {
	*publish.Report
}
