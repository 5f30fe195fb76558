package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestSign(t *testing.T) {
	payload := []byte(`{"event":"guide.completed"}`)
	secret := "whsec_test"

	got := Sign(payload, secret)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	if got != want {
		t.Errorf("Sign = %q, want %q", got, want)
	}
}

func TestSign_DiffersBySecret(t *testing.T) {
	payload := []byte("body")
	if Sign(payload, "a") == Sign(payload, "b") {
		t.Error("signatures with different secrets should differ")
	}
}
