package square

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"hash"
	"net/http"
)

const (
	HeaderSignatureSHA256 = "x-square-hmacsha256-signature"
	HeaderSignatureSHA1   = "x-square-hmacsha1-signature"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNoSignatureKey   = errors.New("webhook signature key is not configured")
)

// VerifySignature checks the SHA-256 header first and falls back to the
// legacy SHA-1 header. Square signs notificationURL+body; an empty
// notificationURL signs the body alone.
func VerifySignature(key, notificationURL string, body []byte, header http.Header) error {
	if key == "" {
		return ErrNoSignatureKey
	}
	sha256Sig := header.Get(HeaderSignatureSHA256)
	sha1Sig := header.Get(HeaderSignatureSHA1)
	if sha256Sig == "" && sha1Sig == "" {
		return ErrMissingSignature
	}
	if sha256Sig != "" && validSignature(sha256.New, key, notificationURL, body, sha256Sig) {
		return nil
	}
	if sha1Sig != "" && validSignature(sha1.New, key, notificationURL, body, sha1Sig) {
		return nil
	}
	return ErrInvalidSignature
}

// Sign returns the base64 HMAC-SHA256 signature for body.
func Sign(key, notificationURL string, body []byte) string {
	return sign(sha256.New, key, notificationURL, body)
}

func sign(h func() hash.Hash, key, notificationURL string, body []byte) string {
	mac := hmac.New(h, []byte(key))
	mac.Write([]byte(notificationURL))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func validSignature(h func() hash.Hash, key, notificationURL string, body []byte, got string) bool {
	want := sign(h, key, notificationURL, body)
	return hmac.Equal([]byte(want), []byte(got))
}
