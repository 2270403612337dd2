package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// NewResetToken генерирует криптостойкий одноразовый токен.
// raw уходит в письмо, в базе храним только hash.
func NewResetToken() (raw, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = base64.RawURLEncoding.EncodeToString(b)
	return raw, HashResetToken(raw), nil
}

func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
