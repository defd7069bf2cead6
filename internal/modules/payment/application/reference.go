package application

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const serialAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateSerialID produces the buyer-facing order reference:
// ORDER-<YYYYMMDD>-<6 alphanumerics>. Uniqueness is enforced by the
// database; the collision probability of the random tail is accepted.
func GenerateSerialID(now time.Time) string {
	return fmt.Sprintf("ORDER-%s-%s", now.Format("20060102"), randomTail(6))
}

// GenerateInvoiceRef produces the merchant invoice number handed to the
// gateway. It is distinct from the sale serial id and embeds the track so
// gateway-side records can be traced back without a lookup.
func GenerateInvoiceRef(trackID string, now time.Time) string {
	return fmt.Sprintf("TRK-%s-%d-%s", trackID, now.Unix(), randomTail(4))
}

// SignCallbackParams keys the business context carried through the gateway
// round-trip. The gateway redirect is unauthenticated, so the callback
// handler refuses trackId/redirectUrl values it did not sign itself.
func SignCallbackParams(secret, trackID, redirectURL string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(trackID + "|" + redirectURL))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyCallbackParams reports whether sig matches the signed params.
func VerifyCallbackParams(secret, trackID, redirectURL, sig string) bool {
	expected := SignCallbackParams(secret, trackID, redirectURL)
	return hmac.Equal([]byte(expected), []byte(sig))
}

func randomTail(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is unusable anyway.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = serialAlphabet[int(b)%len(serialAlphabet)]
	}
	return string(buf)
}
