package digest

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

func md5Hex(items ...string) string {
	sum := md5.Sum([]byte(strings.Join(items, ":")))
	return hex.EncodeToString(sum[:])
}

// HA1 = MD5(username:realm:password)
func HA1(username, realm, password string) string {
	return md5Hex(username, realm, password)
}

// HA2 = MD5(method:uri)
func HA2(method, uri string) string {
	return md5Hex(method, uri)
}

// Response computes the request digest. An empty qop selects the legacy
// RFC 2069 form MD5(HA1:nonce:HA2).
func Response(ha1, nonce, nc, cnonce, qop, ha2 string) string {
	if len(qop) == 0 {
		return md5Hex(ha1, nonce, ha2)
	}
	return md5Hex(ha1, nonce, nc, cnonce, qop, ha2)
}
