// Package fingerprint normalizes the opaque device signal supplied by the
// client. The raw value is untrusted and churn-prone; it is hashed server
// side so raw signals are never persisted or logged.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"blogpulse/internal/model"
)

// Hash validates and hashes a raw client fingerprint. The result is the
// opaque identity key stored in the engagement ledger.
func Hash(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", model.ErrFingerprintRequired
	}
	if len(raw) > model.MaxFingerprintLength {
		return "", model.ErrFingerprintTooLong
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:]), nil
}
