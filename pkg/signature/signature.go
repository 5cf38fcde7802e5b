package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPaddleTolerance is how far a Paddle webhook timestamp may
// drift from our clock before we treat the request as a replay.
const DefaultPaddleTolerance = 5 * time.Minute

func hmacSHA256(secret string, data []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return mac.Sum(nil)
}

// VerifyFastSpring checks the X-FS-Signature header, a base64-encoded
// HMAC-SHA256 of the raw request body.
func VerifyFastSpring(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	expected := base64.StdEncoding.EncodeToString(hmacSHA256(secret, body))
	return hmac.Equal([]byte(expected), []byte(header))
}

// VerifyMailerLite checks the webhook signature header, a hex-encoded
// HMAC-SHA256 of the raw request body.
func VerifyMailerLite(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	expected := hex.EncodeToString(hmacSHA256(secret, body))
	return hmac.Equal([]byte(expected), []byte(header))
}

// PaddleSignature is the parsed form of the Paddle-Signature header,
// "ts=<unix>;h1=<hex hmac>".
type PaddleSignature struct {
	Timestamp int64
	H1        string
}

func ParsePaddleSignature(header string) (*PaddleSignature, error) {
	var sig PaddleSignature
	for _, part := range strings.Split(header, ";") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		switch key {
		case "ts":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid ts in signature header: %w", err)
			}
			sig.Timestamp = ts
		case "h1":
			sig.H1 = value
		}
	}
	if sig.Timestamp == 0 || sig.H1 == "" {
		return nil, fmt.Errorf("signature header missing ts or h1")
	}
	return &sig, nil
}

// VerifyPaddle checks the Paddle-Signature header. The signed payload
// is "<ts>:<raw body>" and the timestamp must be within tolerance of
// now.
func VerifyPaddle(secret string, body []byte, header string, now time.Time, tolerance time.Duration) error {
	if secret == "" {
		return fmt.Errorf("paddle secret not configured")
	}
	sig, err := ParsePaddleSignature(header)
	if err != nil {
		return err
	}

	sent := time.Unix(sig.Timestamp, 0)
	drift := now.Sub(sent)
	if drift < 0 {
		drift = -drift
	}
	if drift > tolerance {
		return fmt.Errorf("signature timestamp outside tolerance: %s", drift)
	}

	signed := append([]byte(strconv.FormatInt(sig.Timestamp, 10)+":"), body...)
	expected := hex.EncodeToString(hmacSHA256(secret, signed))
	if !hmac.Equal([]byte(expected), []byte(sig.H1)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
