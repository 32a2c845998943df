package davclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xxxsen/cardpub/digest"
)

const (
	testUser      = "admin"
	testPassword  = "secret"
	testChallenge = `Digest realm="x", nonce="abc123", qop="auth"`
)

type recordedRequest struct {
	Method        string
	Path          string
	Authorization string
	Header        http.Header
	Body          []byte
}

// fakeDav answers every unsigned request with a 401 challenge and hands
// correctly signed ones to handle.
type fakeDav struct {
	challenge string
	rejectAll bool
	handle    http.HandlerFunc

	mu   sync.Mutex
	reqs []*recordedRequest
}

func (f *fakeDav) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	authz := r.Header.Get("Authorization")
	f.mu.Lock()
	f.reqs = append(f.reqs, &recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: authz,
		Header:        r.Header.Clone(),
		Body:          body,
	})
	challenge, rejectAll := f.challenge, f.rejectAll
	f.mu.Unlock()
	if rejectAll || len(authz) == 0 || !f.verify(r, challenge, authz) {
		if len(challenge) != 0 {
			w.Header().Set("WWW-Authenticate", challenge)
		}
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	f.handle(w, r)
}

func (f *fakeDav) setChallenge(challenge string, rejectAll bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.challenge = challenge
	f.rejectAll = rejectAll
}

func (f *fakeDav) verify(r *http.Request, challenge string, authz string) bool {
	a, err := digest.ParseAuthorization(authz)
	if err != nil {
		return false
	}
	ch, err := digest.ParseChallenge(challenge)
	if err != nil {
		return false
	}
	if a.Username != testUser || a.Nonce != ch.Nonce || a.URI != r.URL.RequestURI() {
		return false
	}
	expect := digest.Response(digest.HA1(testUser, ch.Realm, testPassword), a.Nonce, a.NC, a.CNonce, a.Qop, digest.HA2(r.Method, a.URI))
	return expect == a.Response
}

func (f *fakeDav) requests() []*recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*recordedRequest(nil), f.reqs...)
}

// signed returns the requests carrying an Authorization header.
func (f *fakeDav) signed() []*recordedRequest {
	rs := make([]*recordedRequest, 0)
	for _, r := range f.requests() {
		if len(r.Authorization) != 0 {
			rs = append(rs, r)
		}
	}
	return rs
}

func newFakeDav(t *testing.T, handle http.HandlerFunc, opts ...Option) (*fakeDav, *Client) {
	f := &fakeDav{challenge: testChallenge, handle: handle}
	svr := httptest.NewServer(f)
	t.Cleanup(svr.Close)
	opts = append([]Option{WithAuth(testUser, testPassword), WithHttpClient(svr.Client())}, opts...)
	cli, err := New(svr.URL, opts...)
	require.NoError(t, err)
	return f, cli
}

func writeMultistatus(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusMultiStatus)
	_, _ = io.WriteString(w, body)
}

const twoEntryListing = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/dav/</d:href>
    <d:propstat>
      <d:prop><d:resourcetype><d:collection/></d:resourcetype></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/products/</d:href>
    <d:propstat>
      <d:prop><d:resourcetype><d:collection/></d:resourcetype></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/cover%20image.jpg</d:href>
    <d:propstat>
      <d:prop>
        <d:resourcetype/>
        <d:getcontentlength>2048</d:getcontentlength>
        <d:getlastmodified>Mon, 19 Oct 2026 08:00:00 GMT</d:getlastmodified>
        <d:getcontenttype>image/jpeg</d:getcontenttype>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`
