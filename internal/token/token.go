package token

// Package token implements the HMAC-signed claim token that carries an
// upload intent between the init and complete phases. The token is the only
// record of intent; no server-side session state exists between the phases,
// so every field that matters for authorization is part of the signed payload.

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// TTL is the fixed lifetime of a claim token.
const TTL = 10 * time.Minute

var (
	ErrMalformed    = errors.New("claim token is malformed")
	ErrBadSignature = errors.New("claim token signature mismatch")
	ErrBadPayload   = errors.New("claim token payload is invalid")
	ErrExpired      = errors.New("claim token expired")
)

// Intent is the signed upload-intent record. IssuedAt/ExpiresAt are Unix
// milliseconds; ExpiresAt is always IssuedAt + TTL.
type Intent struct {
	UID       string `json:"uid"`
	Path      string `json:"path"`
	UserID    string `json:"userId"`
	Title     string `json:"title"`
	DocType   string `json:"docType"`
	Version   int    `json:"version"`
	FileSize  int64  `json:"fileSize"`
	MimeType  string `json:"mimeType"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func sign(payloadEncoded string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payloadEncoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Issue stamps the intent with iat/exp at now and returns the bearer token
// "payload.signature" with both parts base64url-encoded.
func Issue(intent Intent, secret []byte, now time.Time) (string, error) {
	intent.IssuedAt = now.UnixMilli()
	intent.ExpiresAt = intent.IssuedAt + TTL.Milliseconds()

	raw, err := json.Marshal(intent)
	if err != nil {
		return "", err
	}
	payloadEncoded := base64.RawURLEncoding.EncodeToString(raw)
	return payloadEncoded + "." + sign(payloadEncoded, secret), nil
}

// Redeem verifies the token and returns the signed intent.
//
// The signature comparison is constant-time and only runs on equal-length
// inputs; the signature is checked before the payload is parsed so nothing is
// learned about an unauthenticated payload's structure. Distinct errors exist
// for logging and audit; HTTP responses must collapse them per the error
// policy.
func Redeem(tok string, secret []byte, now time.Time) (*Intent, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrMalformed
	}
	payloadEncoded, signature := parts[0], parts[1]

	expected := sign(payloadEncoded, secret)
	if len(signature) != len(expected) || !hmac.Equal([]byte(signature), []byte(expected)) {
		return nil, ErrBadSignature
	}

	raw, err := base64.RawURLEncoding.DecodeString(payloadEncoded)
	if err != nil {
		return nil, ErrBadPayload
	}
	var intent Intent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, ErrBadPayload
	}

	if now.UnixMilli() > intent.ExpiresAt {
		return nil, ErrExpired
	}
	return &intent, nil
}
