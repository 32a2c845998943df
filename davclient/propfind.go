package davclient

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

const propfindBody = `<?xml version="1.0" encoding="utf-8"?>
<d:propfind xmlns:d="DAV:">
  <d:prop>
    <d:resourcetype/>
    <d:getcontentlength/>
    <d:getlastmodified/>
    <d:getcontenttype/>
  </d:prop>
</d:propfind>`

// the tags carry no namespace on purpose, encoding/xml then matches on the
// local name only, so `d:`, `D:` or any other prefix bound to DAV: decodes.
type multistatus struct {
	XMLName   xml.Name      `xml:"multistatus"`
	Responses []davResponse `xml:"response"`
}

type davResponse struct {
	Href      string     `xml:"href"`
	Propstats []propstat `xml:"propstat"`
}

type propstat struct {
	Prop   prop   `xml:"prop"`
	Status string `xml:"status"`
}

type prop struct {
	ResourceType  *resourceType `xml:"resourcetype"`
	ContentLength string        `xml:"getcontentlength"`
	LastModified  string        `xml:"getlastmodified"`
	ContentType   string        `xml:"getcontenttype"`
}

type resourceType struct {
	Collection *struct{} `xml:"collection"`
}

type FileEntry struct {
	Path          string `json:"path"`
	Name          string `json:"name"`
	SizeBytes     int64  `json:"size_bytes"`
	SizeFormatted string `json:"size_formatted"`
	LastModified  string `json:"last_modified,omitempty"`
	ContentType   string `json:"content_type,omitempty"`
}

type FolderEntry struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type Listing struct {
	Files   []*FileEntry   `json:"files"`
	Folders []*FolderEntry `json:"folders"`
}

func (l *Listing) Len() int {
	return len(l.Files) + len(l.Folders)
}

// FindFile returns the file whose unescaped name is name.
func (l *Listing) FindFile(name string) (*FileEntry, bool) {
	for _, f := range l.Files {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// mergedProp folds every propstat of one response together, servers split
// found (200) and missing (404) properties into separate blocks.
type mergedProp struct {
	isDir         bool
	contentLength string
	lastModified  string
	contentType   string
}

func (r *davResponse) merge() *mergedProp {
	m := &mergedProp{}
	for _, ps := range r.Propstats {
		p := ps.Prop
		if p.ResourceType != nil && p.ResourceType.Collection != nil {
			m.isDir = true
		}
		if v := strings.TrimSpace(p.ContentLength); len(v) != 0 {
			m.contentLength = v
		}
		if v := strings.TrimSpace(p.LastModified); len(v) != 0 {
			m.lastModified = v
		}
		if v := strings.TrimSpace(p.ContentType); len(v) != 0 {
			m.contentType = v
		}
	}
	return m
}

// normalizeHref reduces an href to an unescaped path without trailing slash,
// absolute urls are reduced to their path.
func normalizeHref(href string) string {
	href = strings.TrimSpace(href)
	p := href
	if u, err := url.Parse(href); err == nil {
		p = u.Path
	} else if v, err := url.PathUnescape(href); err == nil {
		p = v
	}
	p = strings.TrimRight(p, "/")
	if len(p) == 0 {
		return "/"
	}
	return p
}

func parseListing(root string, body []byte) (*Listing, error) {
	ms := &multistatus{}
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(ms); err != nil {
		return nil, &ParseError{Path: root, Err: fmt.Errorf("decode multistatus failed, err:%w", err)}
	}
	self := normalizeHref(root)
	rs := &Listing{
		Files:   make([]*FileEntry, 0, len(ms.Responses)),
		Folders: make([]*FolderEntry, 0, len(ms.Responses)),
	}
	for _, item := range ms.Responses {
		href := strings.TrimSpace(item.Href)
		if len(href) == 0 {
			continue
		}
		normalized := normalizeHref(href)
		if normalized == self {
			continue
		}
		name := path.Base(normalized)
		m := item.merge()
		if m.isDir {
			rs.Folders = append(rs.Folders, &FolderEntry{Path: href, Name: name})
			continue
		}
		size, err := strconv.ParseInt(m.contentLength, 10, 64)
		if err != nil || size < 0 {
			size = 0
		}
		rs.Files = append(rs.Files, &FileEntry{
			Path:          href,
			Name:          name,
			SizeBytes:     size,
			SizeFormatted: FormatSize(size),
			LastModified:  m.lastModified,
			ContentType:   m.contentType,
		})
	}
	return rs, nil
}
