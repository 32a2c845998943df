package davclient

import (
	"net/http"
	"strings"
)

type PayloadKind int

const (
	PayloadText PayloadKind = iota
	PayloadBinary
)

func (k PayloadKind) String() string {
	if k == PayloadBinary {
		return "binary"
	}
	return "text"
}

// Payload is a fully buffered response body, either raw bytes or decoded text.
type Payload struct {
	kind PayloadKind
	raw  []byte
	text string
}

func BinaryPayload(raw []byte) Payload {
	return Payload{kind: PayloadBinary, raw: raw}
}

func TextPayload(text string) Payload {
	return Payload{kind: PayloadText, text: text}
}

func (p Payload) Kind() PayloadKind {
	return p.kind
}

func (p Payload) IsBinary() bool {
	return p.kind == PayloadBinary
}

// Bytes returns the body as bytes whatever the kind.
func (p Payload) Bytes() []byte {
	if p.kind == PayloadBinary {
		return p.raw
	}
	return []byte(p.text)
}

// Text returns the body as string whatever the kind.
func (p Payload) Text() string {
	if p.kind == PayloadText {
		return p.text
	}
	return string(p.raw)
}

func (p Payload) Len() int {
	if p.kind == PayloadBinary {
		return len(p.raw)
	}
	return len(p.text)
}

// IsBinaryContentType: image/* prefix, or any application/, video/, audio/ type.
func IsBinaryContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.HasPrefix(ct, "image/") ||
		strings.Contains(ct, "application/") ||
		strings.Contains(ct, "video/") ||
		strings.Contains(ct, "audio/")
}

func negotiatePayload(ct string, raw []byte) Payload {
	if IsBinaryContentType(ct) {
		return BinaryPayload(raw)
	}
	return TextPayload(string(raw))
}

// Response is the envelope of one http round trip.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       Payload
}
