package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"testing"
	"time"
)

func sign(secret string, data []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return mac.Sum(nil)
}

func TestVerifyFastSpring(t *testing.T) {
	secret := "fs-secret"
	body := []byte(`{"events":[{"type":"subscription.activated"}]}`)
	header := base64.StdEncoding.EncodeToString(sign(secret, body))

	if !VerifyFastSpring(secret, body, header) {
		t.Error("valid signature rejected")
	}
	if VerifyFastSpring(secret, []byte(`{"tampered":true}`), header) {
		t.Error("tampered body accepted")
	}
	if VerifyFastSpring(secret, body, "") {
		t.Error("empty header accepted")
	}
	if VerifyFastSpring("", body, header) {
		t.Error("empty secret accepted")
	}
	if VerifyFastSpring("wrong-secret", body, header) {
		t.Error("wrong secret accepted")
	}
}

func TestVerifyMailerLite(t *testing.T) {
	secret := "ml-secret"
	body := []byte(`{"type":"subscriber.created"}`)
	header := hex.EncodeToString(sign(secret, body))

	if !VerifyMailerLite(secret, body, header) {
		t.Error("valid signature rejected")
	}
	if VerifyMailerLite(secret, body, hex.EncodeToString(sign("other", body))) {
		t.Error("signature from wrong secret accepted")
	}
}

func paddleHeader(secret string, body []byte, ts int64) string {
	signed := append([]byte(fmt.Sprintf("%d:", ts)), body...)
	return fmt.Sprintf("ts=%d;h1=%s", ts, hex.EncodeToString(sign(secret, signed)))
}

func TestVerifyPaddle(t *testing.T) {
	secret := "pdl-secret"
	body := []byte(`{"event_type":"subscription.updated"}`)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		header := paddleHeader(secret, body, now.Unix())
		if err := VerifyPaddle(secret, body, header, now, DefaultPaddleTolerance); err != nil {
			t.Errorf("valid signature rejected: %v", err)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		header := paddleHeader(secret, body, now.Unix())
		if err := VerifyPaddle(secret, []byte(`{}`), header, now, DefaultPaddleTolerance); err == nil {
			t.Error("tampered body accepted")
		}
	})

	t.Run("stale timestamp", func(t *testing.T) {
		header := paddleHeader(secret, body, now.Add(-6*time.Minute).Unix())
		if err := VerifyPaddle(secret, body, header, now, DefaultPaddleTolerance); err == nil {
			t.Error("stale timestamp accepted")
		}
	})

	t.Run("future timestamp", func(t *testing.T) {
		header := paddleHeader(secret, body, now.Add(6*time.Minute).Unix())
		if err := VerifyPaddle(secret, body, header, now, DefaultPaddleTolerance); err == nil {
			t.Error("future timestamp accepted")
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		for _, header := range []string{"", "ts=abc;h1=ff", "h1=ff", "ts=123"} {
			if err := VerifyPaddle(secret, body, header, now, DefaultPaddleTolerance); err == nil {
				t.Errorf("malformed header %q accepted", header)
			}
		}
	})
}

func TestParsePaddleSignature(t *testing.T) {
	sig, err := ParsePaddleSignature("ts=1767225600;h1=deadbeef")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if sig.Timestamp != 1767225600 {
		t.Errorf("ts = %d, want 1767225600", sig.Timestamp)
	}
	if sig.H1 != "deadbeef" {
		t.Errorf("h1 = %q, want deadbeef", sig.H1)
	}
}
