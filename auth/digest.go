package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/cardpub/digest"
)

const (
	defaultRealm    = "cardpub"
	defaultNonceTTL = 5 * time.Minute
)

type nonceState struct {
	issueAt time.Time
	lastNC  uint64
}

// DigestAuth issues digest challenges and verifies the authorization headers
// answering them. Every challenge carries a fresh nonce.
type DigestAuth struct {
	c      *config
	fn     UserQueryFunc
	opaque string

	mu     sync.Mutex
	nonces map[string]*nonceState
}

func NewDigestAuth(fn UserQueryFunc, opts ...Option) *DigestAuth {
	c := &config{
		realm:    defaultRealm,
		nonceTTL: defaultNonceTTL,
		qop:      true,
		opaque:   true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	d := &DigestAuth{
		c:      c,
		fn:     fn,
		nonces: make(map[string]*nonceState),
	}
	if c.opaque {
		d.opaque = newToken()
	}
	return d
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (d *DigestAuth) Realm() string {
	return d.c.realm
}

// Challenge registers a new nonce and returns the WWW-Authenticate value.
func (d *DigestAuth) Challenge(stale bool) string {
	nonce := newToken()
	now := d.c.now()
	d.mu.Lock()
	for k, st := range d.nonces {
		if now.Sub(st.issueAt) > d.c.nonceTTL {
			delete(d.nonces, k)
		}
	}
	d.nonces[nonce] = &nonceState{issueAt: now}
	d.mu.Unlock()

	sb := strings.Builder{}
	fmt.Fprintf(&sb, `%s realm="%s", nonce="%s"`, digest.SchemeDigest, d.c.realm, nonce)
	if d.c.qop {
		fmt.Fprintf(&sb, `, qop="%s"`, digest.QopAuth)
	}
	if len(d.opaque) != 0 {
		fmt.Fprintf(&sb, `, opaque="%s"`, d.opaque)
	}
	fmt.Fprintf(&sb, `, algorithm=MD5`)
	if stale {
		sb.WriteString(`, stale=true`)
	}
	return sb.String()
}

// Verify checks the Authorization header of r and returns the user name.
func (d *DigestAuth) Verify(ctx context.Context, r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if len(header) == 0 {
		return "", ErrNoAuth
	}
	a, err := digest.ParseAuthorization(header)
	if err != nil {
		return "", err
	}
	if a.URI != r.URL.RequestURI() {
		return "", fmt.Errorf("%w, header uri:%s, request uri:%s", ErrURIMismatch, a.URI, r.URL.RequestURI())
	}
	if a.Realm != d.c.realm {
		return "", ErrRealmMismatch
	}
	pwd, ok, err := d.fn(ctx, a.Username)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w, u:%s", ErrUserNotFound, a.Username)
	}
	expect := digest.Response(digest.HA1(a.Username, a.Realm, pwd), a.Nonce, a.NC, a.CNonce, a.Qop, digest.HA2(r.Method, a.URI))
	if subtle.ConstantTimeCompare([]byte(expect), []byte(a.Response)) != 1 {
		return "", ErrBadResponse
	}
	if err := d.useNonce(a); err != nil {
		return "", err
	}
	return a.Username, nil
}

func (d *DigestAuth) useNonce(a *digest.Authorization) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.nonces[a.Nonce]
	if !ok {
		return ErrUnknownNonce
	}
	if d.c.now().Sub(st.issueAt) > d.c.nonceTTL {
		delete(d.nonces, a.Nonce)
		return ErrStaleNonce
	}
	if len(a.Qop) == 0 { //legacy模式没有nc, 无法防重放, 只允许使用一次
		delete(d.nonces, a.Nonce)
		return nil
	}
	//nc按16进制解析, 十进制填充的计数同样单调递增
	nc, err := strconv.ParseUint(a.NC, 16, 64)
	if err != nil {
		return fmt.Errorf("invalid nc:%s, err:%w", a.NC, err)
	}
	if nc <= st.lastNC {
		return fmt.Errorf("%w, nc:%s", ErrNonceReplay, a.NC)
	}
	st.lastNC = nc
	return nil
}
