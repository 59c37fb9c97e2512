package barcode

// Package barcode builds and parses the printable lookup-code payload.
// The payload encodes a document identity plus a salted integrity checksum so
// a printed or scanned code can be verified without exposing personal data.

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const (
	// prefix is the magic marker of a lookup code.
	prefix = "BHTCL"
	// checksumLen is the number of hex characters kept from the digest.
	checksumLen = 10
)

// Identity is the document identity recovered from a valid lookup code.
type Identity struct {
	DocUID  string
	DocType string
	Version int
}

// Checksum computes the salted integrity checksum over the identity fields.
// The digest input is the plain concatenation uid+type+version+salt with no
// separators; the order must not change or existing printed codes break.
func Checksum(docUID, docType string, version int, salt string) string {
	raw := docUID + docType + strconv.Itoa(version) + salt
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:checksumLen]
}

// Build returns the full lookup-code payload for the given identity.
func Build(docUID, docType string, version int, salt string) string {
	checksum := Checksum(docUID, docType, version, salt)
	return fmt.Sprintf("%s|%s|%s|v%d|%s", prefix, docUID, docType, version, checksum)
}

// Parse validates a presented payload and recovers the document identity.
// Every reject path returns (nil, false): callers cannot distinguish a
// malformed payload from a wrong checksum, which denies enumeration oracles.
func Parse(payload, salt string) (*Identity, bool) {
	parts := strings.Split(strings.TrimSpace(payload), "|")
	if len(parts) != 5 {
		return nil, false
	}

	magic, docUID, docType, versionPart, checksum := parts[0], parts[1], parts[2], parts[3], parts[4]
	if magic != prefix || docUID == "" || docType == "" || checksum == "" {
		return nil, false
	}
	if !strings.HasPrefix(versionPart, "v") {
		return nil, false
	}

	version, err := strconv.Atoi(versionPart[1:])
	if err != nil || version < 1 {
		return nil, false
	}

	expected := Checksum(docUID, docType, version, salt)
	if len(checksum) != len(expected) {
		return nil, false
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(checksum)) != 1 {
		return nil, false
	}

	return &Identity{DocUID: docUID, DocType: docType, Version: version}, true
}
