package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// SignHex returns the hex encoded HMAC-SHA256 of message.
func SignHex(secret []byte, message string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHex reports whether signature is the SignHex value of message.
// Malformed hex never verifies.
func VerifyHex(secret []byte, message string, signature string) bool {
	provided, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(provided) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return hmac.Equal(provided, mac.Sum(nil))
}

// TokensMatch compares a presented static token in constant time. An empty
// expected token matches nothing.
func TokensMatch(provided string, expected string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
