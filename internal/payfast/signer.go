package payfast

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"strings"
)

// Sign computes the PayFast signature: the MD5 hex digest of the url-encoded,
// &-joined key=value pairs in insertion order, with the merchant passphrase
// appended as a trailing pair when configured.
//
// MD5 is required byte-for-byte by the gateway's documented algorithm. It is
// a compatibility constraint, not a cryptographic choice.
func Sign(fields Fields, passphrase string) string {
	var b strings.Builder
	for i, fl := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(fl.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(fl.Value))
	}
	if passphrase != "" {
		b.WriteString("&passphrase=")
		b.WriteString(url.QueryEscape(passphrase))
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// VerifySignature recomputes the signature over the fields (minus the
// signature field itself, in received order) and byte-compares it with the
// received value.
func VerifySignature(fields Fields, passphrase string) bool {
	received := fields.Get(FieldSignature)
	if received == "" {
		return false
	}
	expected := Sign(fields.Without(FieldSignature), passphrase)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}
