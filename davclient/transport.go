package davclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/xxxsen/cardpub/digest"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	defaultMaxTraceBodySize = 512
)

func (c *Client) trace(ctx context.Context, msg string, fields ...zap.Field) {
	if !c.c.verbose {
		return
	}
	logutil.GetLogger(ctx).Debug(msg, fields...)
}

// authenticatedRequest runs the digest exchange: an unauthenticated probe,
// then, only if the probe answers 401, a single retry signed against the
// challenge it carried. A second 401 is final.
func (c *Client) authenticatedRequest(ctx context.Context, method string, p string, header http.Header, body []byte) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.buildURL(p)
	rsp, uri, err := c.roundTrip(ctx, method, p, target, header, body, "")
	if err != nil {
		return nil, err
	}
	if rsp.StatusCode != http.StatusUnauthorized {
		return rsp, nil
	}
	challenge := findDigestChallenge(rsp.Header)
	ch, err := digest.ParseChallenge(challenge)
	if err != nil {
		c.trace(ctx, "parse digest challenge failed", zap.String("www_authenticate", challenge), zap.Error(err))
		return nil, &AuthChallengeError{Header: challenge, Err: err}
	}
	c.trace(ctx, "recv digest challenge", zap.String("realm", ch.Realm), zap.String("nonce", ch.Nonce),
		zap.String("qop", ch.Qop), zap.String("opaque", ch.Opaque), zap.Bool("stale", ch.Stale))
	cnonce, err := c.c.nonceSource()
	if err != nil {
		return nil, fmt.Errorf("generate client nonce failed, err:%w", err)
	}
	c.sess = c.sess.WithChallenge(ch).Next(cnonce)
	authz := digest.Authorize(c.sess, c.c.cred, method, uri)
	c.trace(ctx, "compute digest response", zap.String("uri", uri), zap.String("ha2", digest.HA2(method, uri)),
		zap.String("nc", authz.NC), zap.String("cnonce", authz.CNonce), zap.String("response", authz.Response))

	rsp, _, err = c.roundTrip(ctx, method, p, target, header, body, authz.String())
	if err != nil {
		return nil, err
	}
	if rsp.StatusCode == http.StatusUnauthorized {
		c.trace(ctx, "digest credentials rejected", zap.String("method", method), zap.String("path", p))
		return nil, fmt.Errorf("%w, method:%s, path:%s", ErrAuthenticationFailed, method, p)
	}
	return rsp, nil
}

func findDigestChallenge(h http.Header) string {
	vals := h.Values("WWW-Authenticate")
	for _, v := range vals {
		if digest.HasScheme(strings.TrimSpace(v), digest.SchemeDigest) {
			return v
		}
	}
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (c *Client) newRequest(ctx context.Context, method string, target string, header http.Header, body []byte, authz string) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, fmt.Errorf("build request failed, method:%s, url:%s, err:%w", method, target, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Del("Authorization")
	if len(authz) != 0 {
		req.Header.Set("Authorization", authz)
	}
	if len(req.Header.Get("User-Agent")) == 0 {
		req.Header.Set("User-Agent", c.c.userAgent)
	}
	return req, nil
}

// roundTrip sends one request and buffers the whole response. It also returns
// the request-uri written on the wire, which is what the digest must sign.
func (c *Client) roundTrip(ctx context.Context, method string, p string, target string, header http.Header, body []byte, authz string) (*Response, string, error) {
	req, err := c.newRequest(ctx, method, target, header, body, authz)
	if err != nil {
		return nil, "", err
	}
	uri := req.URL.RequestURI()
	c.trace(ctx, "send request", zap.String("method", method), zap.String("url", target),
		zap.Any("headers", req.Header), zap.Int("body_size", len(body)), zap.Bool("signed", len(authz) != 0))
	rsp, err := c.c.httpClient.Do(req)
	if err != nil {
		c.trace(ctx, "request failed", zap.String("method", method), zap.String("url", target), zap.Error(err))
		return nil, uri, &TransportError{Method: method, Path: p, Err: err}
	}
	defer rsp.Body.Close()
	raw, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, uri, &TransportError{Method: method, Path: p, Err: fmt.Errorf("read body failed, err:%w", err)}
	}
	out := &Response{
		StatusCode: rsp.StatusCode,
		Status:     statusText(rsp),
		Header:     rsp.Header,
		Body:       negotiatePayload(rsp.Header.Get("Content-Type"), raw),
	}
	if c.c.verbose {
		c.trace(ctx, "recv response", zap.String("method", method), zap.String("url", target),
			zap.Int("status", out.StatusCode), zap.Any("headers", rsp.Header),
			zap.String("payload_kind", out.Body.Kind().String()), zap.Int("body_size", len(raw)),
			zap.String("body", truncateBody(out.Body)))
	}
	return out, uri, nil
}

func truncateBody(p Payload) string {
	if p.IsBinary() {
		return fmt.Sprintf("<binary %d bytes>", p.Len())
	}
	txt := p.Text()
	if len(txt) > defaultMaxTraceBodySize {
		return txt[:defaultMaxTraceBodySize] + "...(truncated)"
	}
	return txt
}

func statusText(rsp *http.Response) string {
	txt := strings.TrimSpace(strings.TrimPrefix(rsp.Status, strconv.Itoa(rsp.StatusCode)))
	if len(txt) == 0 {
		txt = http.StatusText(rsp.StatusCode)
	}
	return txt
}
