package digest

import (
	"errors"
	"fmt"
	"strings"
)

const (
	SchemeDigest = "Digest"
	QopAuth      = "auth"
)

var (
	ErrNoChallenge  = errors.New("no www-authenticate challenge found")
	ErrNotDigest    = errors.New("challenge scheme is not digest")
	ErrInvalidParam = errors.New("invalid directive")
)

// Challenge is the parsed form of a `WWW-Authenticate: Digest ...` header.
type Challenge struct {
	Realm     string
	Nonce     string
	Opaque    string
	Qop       string
	Algorithm string
	Stale     bool
}

// ParseChallenge parses a Digest challenge. The header must start with the
// literal scheme token "Digest". When the server offers a qop list, "auth" is
// picked if present, otherwise the first offered token is kept.
func ParseChallenge(header string) (*Challenge, error) {
	header = strings.TrimSpace(header)
	if len(header) == 0 {
		return nil, ErrNoChallenge
	}
	if !HasScheme(header, SchemeDigest) {
		return nil, fmt.Errorf("%w, header:%s", ErrNotDigest, header)
	}
	params, err := ParseDirectives(header[len(SchemeDigest):])
	if err != nil {
		return nil, err
	}
	if len(params["nonce"]) == 0 {
		return nil, fmt.Errorf("%w, missing nonce", ErrInvalidParam)
	}
	ch := &Challenge{
		Realm:     params["realm"],
		Nonce:     params["nonce"],
		Opaque:    params["opaque"],
		Qop:       selectQop(params["qop"]),
		Algorithm: params["algorithm"],
		Stale:     strings.EqualFold(params["stale"], "true"),
	}
	return ch, nil
}

// HasScheme reports whether header starts with the scheme token followed by
// whitespace or nothing, "DigestFoo" is another scheme.
func HasScheme(header string, scheme string) bool {
	if !strings.HasPrefix(header, scheme) {
		return false
	}
	rest := header[len(scheme):]
	return len(rest) == 0 || rest[0] == ' ' || rest[0] == '\t'
}

func selectQop(offer string) string {
	if len(offer) == 0 {
		return ""
	}
	var first string
	for _, item := range strings.Split(offer, ",") {
		item = strings.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		if item == QopAuth {
			return QopAuth
		}
		if len(first) == 0 {
			first = item
		}
	}
	return first
}

// ParseDirectives splits a comma separated `key=value` list. Values may be
// quoted, in which case the quotes are stripped and `\"` escapes are resolved.
// Commas inside quoted values do not split. Keys are lower-cased.
func ParseDirectives(s string) (map[string]string, error) {
	rs := make(map[string]string, 8)
	for _, item := range splitDirectives(s) {
		item = strings.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		idx := strings.Index(item, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("%w, item:%s", ErrInvalidParam, item)
		}
		key := strings.ToLower(strings.TrimSpace(item[:idx]))
		rs[key] = unquote(strings.TrimSpace(item[idx+1:]))
	}
	return rs, nil
}

func splitDirectives(s string) []string {
	rs := make([]string, 0, 8)
	var inQuote, escaped bool
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inQuote:
			escaped = true
		case ch == '"':
			inQuote = !inQuote
		case ch == ',' && !inQuote:
			rs = append(rs, s[start:i])
			start = i + 1
		}
	}
	rs = append(rs, s[start:])
	return rs
}

func unquote(v string) string {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return v
	}
	v = v[1 : len(v)-1]
	if !strings.Contains(v, `\`) {
		return v
	}
	sb := strings.Builder{}
	sb.Grow(len(v))
	for i := 0; i < len(v); i++ {
		if v[i] == '\\' && i+1 < len(v) {
			i++
		}
		sb.WriteByte(v[i])
	}
	return sb.String()
}
