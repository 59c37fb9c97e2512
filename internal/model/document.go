package model

import "time"

// Document represents the metadata record of an archived file.
// This is a pure domain model with no database-specific dependencies or tags.
// It carries relationship pointers (IDs only, never embedded personal data)
// and the retention attributes the review job operates on.
type Document struct {
	DocUID              string    `json:"doc_uid"`
	DocType             string    `json:"doc_type"`
	Version             int       `json:"version"`
	Title               string    `json:"title"`
	Description         string    `json:"description,omitempty"`
	ClassificationLevel string    `json:"classification_level"`
	StaffID             string    `json:"staff_id,omitempty"`
	ClientID            string    `json:"client_id,omitempty"`
	SupplierID          string    `json:"supplier_id,omitempty"`
	RetentionClass      string    `json:"retention_class"`
	RetentionTrigger    time.Time `json:"retention_trigger_date"`
	DisposalDue         time.Time `json:"disposal_due_date"`
	LegalHold           bool      `json:"legal_hold"`
	LegalHoldReason     string    `json:"legal_hold_reason,omitempty"`
	FileSize            int64     `json:"file_size"`
	MimeType            string    `json:"mime_type"`
	StoragePath         string    `json:"storage_path"`
	CreatedBy           string    `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
}

// DocumentView is the restricted projection returned to callers resolving a
// lookup code. It deliberately omits the raw storage path and the owning
// principal.
type DocumentView struct {
	DocUID              string    `json:"doc_uid"`
	DocType             string    `json:"doc_type"`
	Version             int       `json:"version"`
	Title               string    `json:"title"`
	Description         string    `json:"description,omitempty"`
	ClassificationLevel string    `json:"classification_level"`
	RetentionClass      string    `json:"retention_class"`
	RetentionTrigger    time.Time `json:"retention_trigger_date"`
	DisposalDue         time.Time `json:"disposal_due_date"`
	LegalHold           bool      `json:"legal_hold"`
}

// DisposalCertificate records the disposal of a document version.
type DisposalCertificate struct {
	DocUID     string    `json:"doc_uid"`
	Version    int       `json:"version"`
	DisposedBy string    `json:"disposed_by"`
	Method     string    `json:"method"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// View returns the restricted projection of the document.
func (d *Document) View() DocumentView {
	return DocumentView{
		DocUID:              d.DocUID,
		DocType:             d.DocType,
		Version:             d.Version,
		Title:               d.Title,
		Description:         d.Description,
		ClassificationLevel: d.ClassificationLevel,
		RetentionClass:      d.RetentionClass,
		RetentionTrigger:    d.RetentionTrigger,
		DisposalDue:         d.DisposalDue,
		LegalHold:           d.LegalHold,
	}
}
