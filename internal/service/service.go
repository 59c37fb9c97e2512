package service

// Package service contains the upload and resolve/download orchestrators.
// Handlers stay thin; every access decision and audit emission lives here.

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer = otel.Tracer("recordsapi/internal/service")

// Validation failures (client-correctable, 400-class).
var (
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidDocType  = errors.New("invalid document type")
	ErrInvalidVersion  = errors.New("invalid version")
	ErrInvalidFileSize = errors.New("invalid file size")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedMime = errors.New("only PDF uploads are allowed")
)

// Claim-token failures on upload completion. The distinctions exist for logs
// and audit; HTTP responses collapse them per the error policy.
var (
	ErrTokenInvalid    = errors.New("finalize token is invalid")
	ErrTokenSignature  = errors.New("finalize token signature mismatch")
	ErrTokenExpired    = errors.New("finalize token expired")
	ErrUserMismatch    = errors.New("finalize token user mismatch")
	ErrBindingMismatch = errors.New("finalize token does not match upload identifiers")
	ErrObjectMissing   = errors.New("uploaded object not found in storage")
)

// Document operation failures.
var (
	ErrDuplicateDocument = errors.New("document already registered")
	ErrNotFound          = errors.New("document not found")
	ErrForbidden         = errors.New("insufficient privilege")
	ErrLegalHold         = errors.New("document is under legal hold")
)
