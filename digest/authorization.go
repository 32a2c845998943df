package digest

import (
	"fmt"
	"strings"
)

type Credentials struct {
	Username string
	Password string
}

// Authorization holds the directives of an `Authorization: Digest ...` header.
type Authorization struct {
	Username string
	Realm    string
	Nonce    string
	URI      string
	Response string
	Qop      string
	NC       string
	CNonce   string
	Opaque   string
}

// Authorize computes the authorization for method+uri from a session snapshot.
// The session must already carry the nonce count and client nonce to use.
func Authorize(s Session, cred Credentials, method, uri string) *Authorization {
	ha1 := HA1(cred.Username, s.Realm, cred.Password)
	ha2 := HA2(method, uri)
	a := &Authorization{
		Username: cred.Username,
		Realm:    s.Realm,
		Nonce:    s.Nonce,
		URI:      uri,
		Opaque:   s.Opaque,
	}
	if s.HasQop() {
		a.Qop = s.Qop
		a.NC = s.NC()
		a.CNonce = s.ClientNonce
	}
	a.Response = Response(ha1, a.Nonce, a.NC, a.CNonce, a.Qop, ha2)
	return a
}

// String renders the header value. qop/nc/cnonce appear only when a qop was
// negotiated, opaque only when the challenge carried one.
func (a *Authorization) String() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, `%s username="%s", realm="%s", nonce="%s", uri="%s", response="%s"`,
		SchemeDigest, a.Username, a.Realm, a.Nonce, a.URI, a.Response)
	if len(a.Qop) != 0 {
		fmt.Fprintf(&sb, `, qop=%s, nc=%s, cnonce="%s"`, a.Qop, a.NC, a.CNonce)
	}
	if len(a.Opaque) != 0 {
		fmt.Fprintf(&sb, `, opaque="%s"`, a.Opaque)
	}
	return sb.String()
}

// ParseAuthorization is the server side counterpart of String.
func ParseAuthorization(header string) (*Authorization, error) {
	header = strings.TrimSpace(header)
	if !HasScheme(header, SchemeDigest) {
		return nil, fmt.Errorf("%w, header:%s", ErrNotDigest, header)
	}
	params, err := ParseDirectives(strings.TrimPrefix(header, SchemeDigest))
	if err != nil {
		return nil, err
	}
	a := &Authorization{
		Username: params["username"],
		Realm:    params["realm"],
		Nonce:    params["nonce"],
		URI:      params["uri"],
		Response: params["response"],
		Qop:      params["qop"],
		NC:       params["nc"],
		CNonce:   params["cnonce"],
		Opaque:   params["opaque"],
	}
	if len(a.Username) == 0 || len(a.Nonce) == 0 || len(a.Response) == 0 {
		return nil, fmt.Errorf("%w, missing username/nonce/response", ErrInvalidParam)
	}
	return a, nil
}
