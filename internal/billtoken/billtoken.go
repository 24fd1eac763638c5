// Package billtoken derives the capability token that lets an
// unauthenticated holder view exactly one order's bill. The token is a pure
// function of the server secret and the order id: nothing is persisted,
// so tokens never expire and cannot be revoked per order. Rotating the
// secret invalidates every outstanding link at once. This matches the
// format already shared with customers; see DESIGN.md before changing it.
package billtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

type Signer struct {
	secret []byte
}

func New(secret string) *Signer { return &Signer{secret: []byte(secret)} }

// Issue returns the hex HMAC-SHA256 of "bill_view_<orderID>".
func (s *Signer) Issue(orderID uint) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte("bill_view_" + strconv.FormatUint(uint64(orderID), 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the token for orderID and compares it to supplied in
// constant time. Every failure mode, length mismatch included, returns a
// plain false with no detail.
func (s *Signer) Verify(orderID uint, supplied string) bool {
	expected := s.Issue(orderID)
	return hmac.Equal([]byte(supplied), []byte(expected))
}
