package davclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/xxxsen/cardpub/digest"
)

type IClient interface {
	ListDirectory(ctx context.Context, dir string) (*Listing, error)
	GetFile(ctx context.Context, file string) (Payload, error)
	UploadFile(ctx context.Context, file string, data []byte) (*UploadResult, error)
	DeleteEntry(ctx context.Context, file string) error
	CreateDirectory(ctx context.Context, dir string) error
	CreateDirectoryAll(ctx context.Context, dir string) error
	MoveEntry(ctx context.Context, src string, dst string) error
	Exists(ctx context.Context, file string) (bool, error)
}

var _ IClient = (*Client)(nil)

// Factory builds a client, each call owning a new digest session.
type Factory func() (IClient, error)

func NewFactory(baseURL string, opts ...Option) Factory {
	return func() (IClient, error) {
		return New(baseURL, opts...)
	}
}

// Client is a WebDAV client authenticating with HTTP Digest. One Client owns
// exactly one digest session; requests on the same Client are serialized so
// the nonce count never interleaves. Use one Client per worker for parallelism.
type Client struct {
	c    *config
	base *url.URL

	mu   sync.Mutex
	sess digest.Session
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if len(baseURL) == 0 {
		return nil, fmt.Errorf("no base url found")
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url failed, url:%s, err:%w", baseURL, err)
	}
	if len(u.Scheme) == 0 || len(u.Host) == 0 {
		return nil, fmt.Errorf("base url should contain scheme and host, url:%s", baseURL)
	}
	return &Client{c: applyOpts(opts...), base: u}, nil
}

// Session returns a snapshot of the current digest session.
func (c *Client) Session() digest.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

func (c *Client) NonceCount() uint32 {
	return c.Session().NonceCount
}

func (c *Client) buildURL(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return c.base.String() + p
}

// requestPath is the unescaped server path p resolves to, base path included.
func (c *Client) requestPath(p string) string {
	u, err := url.Parse(c.buildURL(p))
	if err != nil {
		return c.base.Path + p
	}
	return u.Path
}
