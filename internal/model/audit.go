package model

import "time"

// Audit actions emitted by the orchestrators.
const (
	ActionUploadDocument   = "UPLOAD_DOCUMENT"
	ActionResolveBarcode   = "RESOLVE_BARCODE"
	ActionDownloadDocument = "DOWNLOAD_DOCUMENT"
	ActionGenerateBarcode  = "GENERATE_BARCODE"
	ActionDeleteDocument   = "DELETE_DOCUMENT"
)

// Audit outcomes.
const (
	OutcomeAllow = "ALLOW"
	OutcomeDeny  = "DENY"
)

// Machine-readable denial reasons recorded alongside DENY outcomes.
const (
	ReasonInvalidChecksumOrFormat = "INVALID_CHECKSUM_OR_FORMAT"
	ReasonScopeMismatch           = "RBAC_SCOPE_MISMATCH"
	ReasonDocumentNotFound        = "DOCUMENT_NOT_FOUND"
	ReasonInsufficientPrivilege   = "INSUFFICIENT_PRIVILEGE"
	ReasonLegalHold               = "LEGAL_HOLD"
	ReasonManualDelete            = "MANUAL_DELETE"
	ReasonTokenInvalid            = "TOKEN_INVALID"
	ReasonTokenSignature          = "TOKEN_SIGNATURE_MISMATCH"
	ReasonTokenExpired            = "TOKEN_EXPIRED"
	ReasonTokenBinding            = "TOKEN_BINDING_MISMATCH"
	ReasonObjectMissing           = "OBJECT_MISSING"
	ReasonDuplicate               = "DUPLICATE_DOCUMENT"
)

// AuditEvent is an append-only record of an access decision.
type AuditEvent struct {
	ID        int64     `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	DocUID    string    `json:"doc_uid,omitempty"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// RequestMeta carries the client attribution attached to every audit event.
type RequestMeta struct {
	IP        string
	UserAgent string
}
