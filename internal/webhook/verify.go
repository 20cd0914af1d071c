package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

const signaturePrefix = "sha256="

var (
	errMissingSignature = errors.New("missing X-Hub-Signature-256 header")
	errBadSignature     = errors.New("invalid signature format, expected 'sha256=<hash>'")
	errSignatureInvalid = errors.New("signature verification failed")
)

// VerifySignature checks an X-Hub-Signature-256 header value against the
// HMAC-SHA256 of payload under secret.
func VerifySignature(payload []byte, header, secret string) error {
	if header == "" {
		return errMissingSignature
	}
	received, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok || received == "" {
		return errBadSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
		return errSignatureInvalid
	}
	return nil
}

// Sign computes the header value GitHub would send for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
