package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"recordsapi/internal/audit"
	"recordsapi/internal/authz"
	"recordsapi/internal/barcode"
	"recordsapi/internal/model"
	"recordsapi/internal/repository"
	"recordsapi/internal/storage"
)

const (
	// retrievalTTL is the lifetime of a signed retrieval reference.
	retrievalTTL = 120 * time.Second

	// reviewWindow is how far ahead the retention job looks for documents
	// approaching their disposal due date.
	reviewWindow = 60 * 24 * time.Hour

	recentDocsLimit   = 400
	recentAuditsLimit = 500
)

// RetrievalRef is a short-lived, scope-limited download reference.
type RetrievalRef struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// CodeResult carries a freshly built lookup-code payload.
type CodeResult struct {
	Payload string `json:"payload"`
	DocUID  string `json:"doc_uid"`
	DocType string `json:"doc_type"`
	Version int    `json:"version"`
}

// InventoryResult is the caller's visible slice of the archive.
type InventoryResult struct {
	Documents []model.Document   `json:"documents"`
	Audits    []model.AuditEvent `json:"audits"`
}

// RetentionSummary reports one run of the retention review job.
type RetentionSummary struct {
	MarkedDueForReview int `json:"marked_due_for_review"`
	DeletionsExecuted  int `json:"deletions_executed"`
}

// DocumentService is the resolve/download orchestrator: it turns presented
// lookup codes or document identities into authorized views or retrieval
// references, and handles manual disposal.
type DocumentService interface {
	// ResolveCode decodes a presented lookup code and returns the restricted
	// metadata projection if the caller may read the document. All failure
	// modes are indistinguishable to the caller.
	ResolveCode(ctx context.Context, p *model.Principal, payload string, meta model.RequestMeta) (*model.DocumentView, error)

	// RetrievalRef returns a time-boxed signed download reference. A version
	// below 1 selects the latest stored version; callers wanting a specific
	// revision, including the first, must name it explicitly.
	RetrievalRef(ctx context.Context, p *model.Principal, docUID string, version int, meta model.RequestMeta) (*RetrievalRef, error)

	// GenerateCode builds a lookup code for a document the caller may read.
	GenerateCode(ctx context.Context, p *model.Principal, docUID string, version int, meta model.RequestMeta) (*CodeResult, error)

	// Delete removes a document's metadata and stored object. Blocked by
	// legal hold; allowed for directors and the owning principal only.
	Delete(ctx context.Context, p *model.Principal, docUID string, meta model.RequestMeta) error

	// ListMine returns the recent documents visible to the caller along with
	// their recent audit events.
	ListMine(ctx context.Context, p *model.Principal) (*InventoryResult, error)

	// RetentionReview flags documents approaching disposal for review. It
	// performs no deletion.
	RetentionReview(ctx context.Context) (*RetentionSummary, error)
}

type documentService struct {
	store     storage.Storage
	docs      repository.DocumentRepository
	audits    repository.AuditRepository
	disposals repository.DisposalRepository
	engine    *authz.Engine
	auditor   *audit.Recorder
	salt      string
	now       func() time.Time
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(
	store storage.Storage,
	docs repository.DocumentRepository,
	audits repository.AuditRepository,
	disposals repository.DisposalRepository,
	engine *authz.Engine,
	auditor *audit.Recorder,
	salt string,
) DocumentService {
	return &documentService{
		store:     store,
		docs:      docs,
		audits:    audits,
		disposals: disposals,
		engine:    engine,
		auditor:   auditor,
		salt:      salt,
		now:       time.Now,
	}
}

func (s *documentService) ResolveCode(ctx context.Context, p *model.Principal, payload string, meta model.RequestMeta) (*model.DocumentView, error) {
	ctx, span := tracer.Start(ctx, "document.resolve_code")
	defer span.End()

	id, ok := barcode.Parse(payload, s.salt)
	if !ok {
		s.auditor.Record(ctx, p.UserID, model.ActionResolveBarcode, "", model.OutcomeDeny, model.ReasonInvalidChecksumOrFormat, meta)
		return nil, ErrNotFound
	}

	allowed, err := s.engine.CanRead(ctx, p.UserID, p.Role, id.DocUID, id.DocType)
	if err != nil {
		return nil, fmt.Errorf("authorization check: %w", err)
	}
	if !allowed {
		s.auditor.Record(ctx, p.UserID, model.ActionResolveBarcode, id.DocUID, model.OutcomeDeny, model.ReasonScopeMismatch, meta)
		return nil, ErrNotFound
	}

	doc, err := s.docs.FindByUIDVersion(ctx, id.DocUID, id.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.auditor.Record(ctx, p.UserID, model.ActionResolveBarcode, id.DocUID, model.OutcomeDeny, model.ReasonDocumentNotFound, meta)
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.auditor.Record(ctx, p.UserID, model.ActionResolveBarcode, id.DocUID, model.OutcomeAllow, "", meta)

	view := doc.View()
	return &view, nil
}

func (s *documentService) RetrievalRef(ctx context.Context, p *model.Principal, docUID string, version int, meta model.RequestMeta) (*RetrievalRef, error) {
	ctx, span := tracer.Start(ctx, "document.retrieval_ref")
	defer span.End()

	var (
		doc *model.Document
		err error
	)
	if version < 1 {
		doc, err = s.docs.FindByUID(ctx, docUID)
	} else {
		doc, err = s.docs.FindByUIDVersion(ctx, docUID, version)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.auditor.Record(ctx, p.UserID, model.ActionDownloadDocument, docUID, model.OutcomeDeny, model.ReasonDocumentNotFound, meta)
			return nil, ErrNotFound
		}
		return nil, err
	}

	allowed, err := s.engine.CanRead(ctx, p.UserID, p.Role, doc.DocUID, doc.DocType)
	if err != nil {
		return nil, fmt.Errorf("authorization check: %w", err)
	}
	if !allowed {
		// Denials surface as not-found: existence stays confidential for
		// identity-based lookups the same as for code-based ones. The audit
		// trail keeps the real reason.
		s.auditor.Record(ctx, p.UserID, model.ActionDownloadDocument, doc.DocUID, model.OutcomeDeny, model.ReasonScopeMismatch, meta)
		return nil, ErrNotFound
	}

	url, err := s.store.PresignGet(ctx, doc.StoragePath, retrievalTTL)
	if err != nil {
		s.auditor.Record(ctx, p.UserID, model.ActionDownloadDocument, doc.DocUID, model.OutcomeDeny, err.Error(), meta)
		return nil, fmt.Errorf("create retrieval reference: %w", err)
	}

	s.auditor.Record(ctx, p.UserID, model.ActionDownloadDocument, doc.DocUID, model.OutcomeAllow, "", meta)

	return &RetrievalRef{URL: url, ExpiresIn: int(retrievalTTL.Seconds())}, nil
}

func (s *documentService) GenerateCode(ctx context.Context, p *model.Principal, docUID string, version int, meta model.RequestMeta) (*CodeResult, error) {
	doc, err := s.docs.FindByUID(ctx, docUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.auditor.Record(ctx, p.UserID, model.ActionGenerateBarcode, docUID, model.OutcomeDeny, model.ReasonDocumentNotFound, meta)
			return nil, ErrNotFound
		}
		return nil, err
	}

	allowed, err := s.engine.CanRead(ctx, p.UserID, p.Role, doc.DocUID, doc.DocType)
	if err != nil {
		return nil, fmt.Errorf("authorization check: %w", err)
	}
	if !allowed {
		s.auditor.Record(ctx, p.UserID, model.ActionGenerateBarcode, doc.DocUID, model.OutcomeDeny, model.ReasonScopeMismatch, meta)
		return nil, ErrNotFound
	}

	if version < 1 {
		version = doc.Version
	}

	s.auditor.Record(ctx, p.UserID, model.ActionGenerateBarcode, doc.DocUID, model.OutcomeAllow, "", meta)

	return &CodeResult{
		Payload: barcode.Build(doc.DocUID, doc.DocType, version, s.salt),
		DocUID:  doc.DocUID,
		DocType: doc.DocType,
		Version: version,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, p *model.Principal, docUID string, meta model.RequestMeta) error {
	ctx, span := tracer.Start(ctx, "document.delete")
	defer span.End()

	doc, err := s.docs.FindByUID(ctx, docUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if p.Role != model.RoleDirector && doc.CreatedBy != p.UserID {
		s.auditor.Record(ctx, p.UserID, model.ActionDeleteDocument, doc.DocUID, model.OutcomeDeny, model.ReasonInsufficientPrivilege, meta)
		return ErrForbidden
	}

	// Legal hold blocks disposal entirely: no storage or metadata mutation.
	if doc.LegalHold {
		s.auditor.Record(ctx, p.UserID, model.ActionDeleteDocument, doc.DocUID, model.OutcomeDeny, model.ReasonLegalHold, meta)
		return ErrLegalHold
	}

	// Storage cleanup failures must not orphan the metadata row: the row is
	// removed regardless and the storage error travels in the certificate
	// notes for operator follow-up.
	notes := ""
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		notes = fmt.Sprintf("storage cleanup reported: %v", err)
	}

	if err := s.docs.Delete(ctx, doc.DocUID); err != nil {
		return fmt.Errorf("delete document metadata: %w", err)
	}

	s.auditor.Record(ctx, p.UserID, model.ActionDeleteDocument, doc.DocUID, model.OutcomeAllow, model.ReasonManualDelete, meta)

	// Best-effort disposal certificate.
	cert := &model.DisposalCertificate{
		DocUID:     doc.DocUID,
		Version:    doc.Version,
		DisposedBy: p.UserID,
		Method:     model.ReasonManualDelete,
		Notes:      notes,
		CreatedAt:  s.now().UTC(),
	}
	_ = s.disposals.Insert(ctx, cert)

	return nil
}

// ListMine filters the recent documents through the authorization engine one
// by one. This is O(n) collaborator calls per request; at production scale
// the relationship filter belongs in the store query.
func (s *documentService) ListMine(ctx context.Context, p *model.Principal) (*InventoryResult, error) {
	docs, err := s.docs.ListRecent(ctx, recentDocsLimit)
	if err != nil {
		return nil, err
	}

	visible := make([]model.Document, 0)
	uids := make([]string, 0)
	for i := range docs {
		allowed, err := s.engine.CanRead(ctx, p.UserID, p.Role, docs[i].DocUID, docs[i].DocType)
		if err != nil {
			return nil, fmt.Errorf("authorization check: %w", err)
		}
		if allowed {
			visible = append(visible, docs[i])
			uids = append(uids, docs[i].DocUID)
		}
	}

	if len(uids) == 0 {
		return &InventoryResult{Documents: visible, Audits: []model.AuditEvent{}}, nil
	}

	audits, err := s.audits.ListByDocUIDs(ctx, uids, recentAuditsLimit)
	if err != nil {
		return nil, err
	}

	return &InventoryResult{Documents: visible, Audits: audits}, nil
}

func (s *documentService) RetentionReview(ctx context.Context) (*RetentionSummary, error) {
	cutoff := s.now().UTC().Add(reviewWindow)
	n, err := s.docs.MarkDueForReview(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("mark due for review: %w", err)
	}
	// Hard deletion is deliberately not performed here; disposal requires
	// the dual-control workflow.
	return &RetentionSummary{MarkedDueForReview: n, DeletionsExecuted: 0}, nil
}
