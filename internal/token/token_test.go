package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("unit-test-secret")

func testIntent() Intent {
	return Intent{
		UID:      "a1b2c3d4e5f60718293a4b5c6d7e8f90",
		Path:     "2026/a1b2c3d4e5f60718293a4b5c6d7e8f90/v1.pdf",
		UserID:   "user-1",
		Title:    "Employment contract",
		DocType:  "STAFF",
		Version:  1,
		FileSize: 1024,
		MimeType: "application/pdf",
	}
}

func TestIssueRedeem_RoundTrip(t *testing.T) {
	now := time.Now()

	tok, err := Issue(testIntent(), testSecret, now)
	require.NoError(t, err)

	got, err := Redeem(tok, testSecret, now.Add(5*time.Minute))
	require.NoError(t, err)

	want := testIntent()
	assert.Equal(t, want.UID, got.UID)
	assert.Equal(t, want.Path, got.Path)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.DocType, got.DocType)
	assert.Equal(t, want.Version, got.Version)
	assert.Equal(t, want.FileSize, got.FileSize)
	assert.Equal(t, want.MimeType, got.MimeType)
	assert.Equal(t, now.UnixMilli(), got.IssuedAt)
	assert.Equal(t, now.UnixMilli()+TTL.Milliseconds(), got.ExpiresAt)
}

func TestRedeem_Expired(t *testing.T) {
	now := time.Now()

	tok, err := Issue(testIntent(), testSecret, now)
	require.NoError(t, err)

	// Exactly at exp is still valid; one millisecond past is not.
	_, err = Redeem(tok, testSecret, now.Add(TTL))
	assert.NoError(t, err)

	_, err = Redeem(tok, testSecret, now.Add(TTL+time.Millisecond))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestRedeem_WrongSecret(t *testing.T) {
	now := time.Now()

	tok, err := Issue(testIntent(), testSecret, now)
	require.NoError(t, err)

	// A secret differing in a single bit must fail signature verification.
	flipped := make([]byte, len(testSecret))
	copy(flipped, testSecret)
	flipped[0] ^= 0x01

	_, err = Redeem(tok, flipped, now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestRedeem_TamperedPayload(t *testing.T) {
	now := time.Now()

	tok, err := Issue(testIntent(), testSecret, now)
	require.NoError(t, err)

	parts := strings.SplitN(tok, ".", 2)
	require.Len(t, parts, 2)

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)

	var intent Intent
	require.NoError(t, json.Unmarshal(raw, &intent))
	intent.UID = "ffffffffffffffffffffffffffffffff"

	tampered, err := json.Marshal(intent)
	require.NoError(t, err)

	// Re-encoded payload with the original signature must be rejected.
	_, err = Redeem(base64.RawURLEncoding.EncodeToString(tampered)+"."+parts[1], testSecret, now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestRedeem_Malformed(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		tok  string
		want error
	}{
		{"empty", "", ErrMalformed},
		{"no separator", "abcdef", ErrMalformed},
		{"two separators", "a.b.c", ErrMalformed},
		{"empty payload", ".sig", ErrMalformed},
		{"empty signature", "payload.", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Redeem(tt.tok, testSecret, now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRedeem_GarbagePayloadWithValidSignature(t *testing.T) {
	now := time.Now()

	// Signature checks out but the payload is not base64url JSON.
	payload := "not/base64!"
	mac := sign(payload, testSecret)

	_, err := Redeem(payload+"."+mac, testSecret, now)
	assert.ErrorIs(t, err, ErrBadPayload)
}
