package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSignature means the webhook call could not be proven to come
// from the provider and must not be acted on.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// webhook timestamps older or newer than this are rejected to limit replay
const signatureTolerance = 5 * time.Minute

// VerifyWebhookSignature checks a Stripe-Signature header against the raw
// request payload. The header carries a unix timestamp and one or more
// hex HMAC-SHA256 signatures over "<timestamp>.<payload>".
func VerifyWebhookSignature(header string, payload []byte, secret string, now time.Time) error {
	if header == "" || secret == "" {
		return ErrInvalidSignature
	}

	var timestamp int64
	var signatures [][]byte
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(value)
			if err == nil {
				signatures = append(signatures, sig)
			}
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return ErrInvalidSignature
	}
	if drift := now.Sub(time.Unix(timestamp, 0)); drift > signatureTolerance || drift < -signatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := signPayload(payload, secret, timestamp)
	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// SignWebhookPayload builds a Stripe-Signature header value for payload,
// signed at ts. Counterpart of VerifyWebhookSignature.
func SignWebhookPayload(payload []byte, secret string, ts time.Time) string {
	sig := signPayload(payload, secret, ts.Unix())
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}

func signPayload(payload []byte, secret string, timestamp int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}
