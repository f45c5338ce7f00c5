package logger

import (
	"encoding/hex"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short, stable digest of a secret so it can be correlated in logs
// without being written out.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:6])
}

// Token is a zap field carrying the fingerprint of a bearer token.
func Token(token string) zap.Field {
	return zap.String("token_fp", Fingerprint(token))
}
