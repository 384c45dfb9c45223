package wompi

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Signer computes the integrity signature Wompi uses to verify that the
// reference/amount/currency triple was not tampered with between the
// merchant and the gateway.
type Signer struct {
	secret string
}

func NewSigner(integritySecret string) *Signer {
	return &Signer{secret: integritySecret}
}

// Sign concatenates reference, amount in minor units, currency and the
// integrity secret, in that exact order with no separators, and returns the
// lowercase hex SHA-256 digest. Deterministic: same inputs, same digest.
func (s *Signer) Sign(reference string, amountInCents int64, currency string) string {
	data := reference + strconv.FormatInt(amountInCents, 10) + currency + s.secret
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
