package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"recordsapi/internal/audit"
	"recordsapi/internal/model"
	"recordsapi/internal/repository"
	"recordsapi/internal/storage"
	"recordsapi/internal/token"
)

// acceptedMimeType is the single MIME type the archive accepts.
const acceptedMimeType = "application/pdf"

const (
	docTypeMaxLen       = 48
	defaultDocType      = "GENERAL"
	classificationLevel = "INTERNAL"
	retentionClass      = "DEFAULT_7Y"
	defaultRetention    = 365 * 24 * time.Hour
)

var docTypeInvalid = regexp.MustCompile(`[^A-Z0-9_]`)

// NormalizeDocType uppercases the category tag, replaces anything outside
// [A-Z0-9_] with an underscore, and caps the length.
func NormalizeDocType(input string) string {
	t := docTypeInvalid.ReplaceAllString(strings.ToUpper(strings.TrimSpace(input)), "_")
	if len(t) > docTypeMaxLen {
		t = t[:docTypeMaxLen]
	}
	return t
}

// UploadInit is the caller's declared upload intent.
type UploadInit struct {
	Title    string
	DocType  string
	Version  int
	FileSize int64
	MimeType string
}

// UploadInitResult carries the write capability and the signed claim token.
type UploadInitResult struct {
	DocUID        string `json:"doc_uid"`
	StoragePath   string `json:"storage_path"`
	UploadURL     string `json:"upload_url"`
	FinalizeToken string `json:"finalize_token"`
	ExpiresAt     int64  `json:"expires_at"`
}

// UploadComplete is the redemption request presented after the transfer.
type UploadComplete struct {
	FinalizeToken string
	DocUID        string
	StoragePath   string
}

// UploadCompleteResult acknowledges a registered document.
type UploadCompleteResult struct {
	DocUID      string `json:"doc_uid"`
	StoragePath string `json:"storage_path"`
}

// UploadService implements the two-phase direct-to-storage upload protocol.
// No state is held between the phases: the signed claim token is the only
// record of intent.
type UploadService interface {
	// Init validates the declared intent, reserves a fresh document identity,
	// and returns a write capability plus the signed claim token.
	Init(ctx context.Context, p *model.Principal, req UploadInit) (*UploadInitResult, error)

	// Complete redeems the claim token, confirms the object landed in
	// storage, and registers the metadata record.
	Complete(ctx context.Context, p *model.Principal, req UploadComplete, meta model.RequestMeta) (*UploadCompleteResult, error)
}

type uploadService struct {
	store    storage.Storage
	docs     repository.DocumentRepository
	auditor  *audit.Recorder
	secret   []byte
	maxBytes int64
	now      func() time.Time
}

// NewUploadService constructs an UploadService.
func NewUploadService(store storage.Storage, docs repository.DocumentRepository, auditor *audit.Recorder, secret []byte, maxBytes int64) UploadService {
	return &uploadService{
		store:    store,
		docs:     docs,
		auditor:  auditor,
		secret:   secret,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

func (s *uploadService) Init(ctx context.Context, p *model.Principal, req UploadInit) (*UploadInitResult, error) {
	ctx, span := tracer.Start(ctx, "upload.init")
	defer span.End()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	docType := req.DocType
	if strings.TrimSpace(docType) == "" {
		docType = defaultDocType
	}
	docType = NormalizeDocType(docType)
	if docType == "" {
		return nil, ErrInvalidDocType
	}
	if req.Version < 1 {
		return nil, ErrInvalidVersion
	}
	if req.FileSize <= 0 {
		return nil, ErrInvalidFileSize
	}
	if req.FileSize > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	if req.MimeType != acceptedMimeType {
		return nil, ErrUnsupportedMime
	}

	now := s.now()
	uid := strings.ReplaceAll(uuid.NewString(), "-", "")
	storagePath := fmt.Sprintf("%d/%s/v%d.pdf", now.UTC().Year(), uid, req.Version)

	uploadURL, err := s.store.PresignPut(ctx, storagePath, token.TTL)
	if err != nil {
		return nil, fmt.Errorf("create write capability: %w", err)
	}

	tok, err := token.Issue(token.Intent{
		UID:      uid,
		Path:     storagePath,
		UserID:   p.UserID,
		Title:    title,
		DocType:  docType,
		Version:  req.Version,
		FileSize: req.FileSize,
		MimeType: req.MimeType,
	}, s.secret, now)
	if err != nil {
		return nil, fmt.Errorf("issue claim token: %w", err)
	}

	return &UploadInitResult{
		DocUID:        uid,
		StoragePath:   storagePath,
		UploadURL:     uploadURL,
		FinalizeToken: tok,
		ExpiresAt:     now.UnixMilli() + token.TTL.Milliseconds(),
	}, nil
}

func (s *uploadService) Complete(ctx context.Context, p *model.Principal, req UploadComplete, meta model.RequestMeta) (*UploadCompleteResult, error) {
	ctx, span := tracer.Start(ctx, "upload.complete")
	defer span.End()

	deny := func(docUID, reason string) {
		s.auditor.Record(ctx, p.UserID, model.ActionUploadDocument, docUID, model.OutcomeDeny, reason, meta)
	}

	if req.FinalizeToken == "" || req.DocUID == "" || req.StoragePath == "" {
		return nil, ErrTokenInvalid
	}

	intent, err := token.Redeem(req.FinalizeToken, s.secret, s.now())
	if err != nil {
		switch {
		case errors.Is(err, token.ErrBadSignature):
			deny(req.DocUID, model.ReasonTokenSignature)
			return nil, ErrTokenSignature
		case errors.Is(err, token.ErrExpired):
			deny(req.DocUID, model.ReasonTokenExpired)
			return nil, ErrTokenExpired
		default:
			deny(req.DocUID, model.ReasonTokenInvalid)
			return nil, ErrTokenInvalid
		}
	}

	// Binding fields are checked against the request's claimed values, not
	// merely signature validity: a valid token for some other upload must
	// not complete this one.
	if intent.UserID != p.UserID {
		deny(req.DocUID, model.ReasonTokenBinding)
		return nil, ErrUserMismatch
	}
	if intent.UID != req.DocUID || intent.Path != req.StoragePath {
		deny(req.DocUID, model.ReasonTokenBinding)
		return nil, ErrBindingMismatch
	}

	// Path shape {year}/{uid}/v{version}.{ext} was produced by Init; anything
	// else means the token payload was not one of ours.
	if strings.Count(intent.Path, "/") != 2 {
		deny(req.DocUID, model.ReasonTokenInvalid)
		return nil, ErrTokenInvalid
	}

	// Confirm the object actually landed before registering metadata. This
	// guards against a completion call racing ahead of the transfer.
	folder := path.Dir(intent.Path)
	entries, err := s.store.List(ctx, folder+"/")
	if err != nil {
		return nil, fmt.Errorf("list storage folder: %w", err)
	}
	found := false
	for _, e := range entries {
		if e.Key == intent.Path {
			found = true
			break
		}
	}
	if !found {
		deny(req.DocUID, model.ReasonObjectMissing)
		return nil, ErrObjectMissing
	}

	now := s.now().UTC()
	doc := &model.Document{
		DocUID:              intent.UID,
		DocType:             intent.DocType,
		Version:             intent.Version,
		Title:               intent.Title,
		ClassificationLevel: classificationLevel,
		RetentionClass:      retentionClass,
		RetentionTrigger:    now.Truncate(24 * time.Hour),
		DisposalDue:         now.Add(defaultRetention).Truncate(24 * time.Hour),
		LegalHold:           false,
		FileSize:            intent.FileSize,
		MimeType:            intent.MimeType,
		StoragePath:         intent.Path,
		CreatedBy:           p.UserID,
		CreatedAt:           now,
	}
	if _, err := s.docs.Create(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// The uniqueness constraint is the only guard against two
			// concurrent completions; the loser surfaces a conflict.
			deny(intent.UID, model.ReasonDuplicate)
			return nil, ErrDuplicateDocument
		}
		return nil, fmt.Errorf("register document metadata: %w", err)
	}

	s.auditor.Record(ctx, p.UserID, model.ActionUploadDocument, intent.UID, model.OutcomeAllow, "", meta)

	return &UploadCompleteResult{DocUID: intent.UID, StoragePath: intent.Path}, nil
}
