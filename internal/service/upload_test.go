package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recordsapi/internal/audit"
	"recordsapi/internal/model"
	"recordsapi/internal/repository"
	repomocks "recordsapi/internal/repository/mocks"
	"recordsapi/internal/storage"
	storagemocks "recordsapi/internal/storage/mocks"
	"recordsapi/internal/token"
)

var testUploadSecret = []byte("upload-test-secret")

func testRecorder(t *testing.T, audits *repomocks.MockAuditRepository) *audit.Recorder {
	t.Helper()
	rec, err := audit.NewRecorder(audits, prometheus.NewRegistry())
	require.NoError(t, err)
	return rec
}

func newUploadService(store *storagemocks.MockStorage, docs *repomocks.MockDocumentRepository, rec *audit.Recorder, at time.Time) *uploadService {
	return &uploadService{
		store:    store,
		docs:     docs,
		auditor:  rec,
		secret:   testUploadSecret,
		maxBytes: 25 << 20,
		now:      func() time.Time { return at },
	}
}

func TestUploadInit_Success(t *testing.T) {
	store := new(storagemocks.MockStorage)
	docs := new(repomocks.MockDocumentRepository)
	audits := new(repomocks.MockAuditRepository)
	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	store.On("PresignPut", mock.Anything, mock.Anything, token.TTL).
		Return("https://object-store/upload", nil)

	svc := newUploadService(store, docs, testRecorder(t, audits), at)
	p := &model.Principal{UserID: "user-1", Role: model.RoleStaff}

	res, err := svc.Init(context.Background(), p, UploadInit{
		Title:    "  Quarterly Invoice  ",
		DocType:  "invoice report",
		Version:  2,
		FileSize: 1024,
		MimeType: "application/pdf",
	})
	require.NoError(t, err)

	assert.Len(t, res.DocUID, 32)
	assert.NotContains(t, res.DocUID, "-")
	assert.Equal(t, "2025/"+res.DocUID+"/v2.pdf", res.StoragePath)
	assert.Equal(t, "https://object-store/upload", res.UploadURL)
	assert.Equal(t, at.UnixMilli()+token.TTL.Milliseconds(), res.ExpiresAt)

	intent, err := token.Redeem(res.FinalizeToken, testUploadSecret, at)
	require.NoError(t, err)
	assert.Equal(t, res.DocUID, intent.UID)
	assert.Equal(t, res.StoragePath, intent.Path)
	assert.Equal(t, "user-1", intent.UserID)
	assert.Equal(t, "Quarterly Invoice", intent.Title)
	assert.Equal(t, "INVOICE_REPORT", intent.DocType)
	assert.Equal(t, 2, intent.Version)
	store.AssertExpectations(t)
}

func TestUploadInit_Validation(t *testing.T) {
	valid := UploadInit{
		Title:    "Contract",
		DocType:  "CONTRACT",
		Version:  1,
		FileSize: 100,
		MimeType: "application/pdf",
	}

	cases := []struct {
		name    string
		mutate  func(*UploadInit)
		wantErr error
	}{
		{"blank title", func(r *UploadInit) { r.Title = "   " }, ErrTitleRequired},
		{"zero version", func(r *UploadInit) { r.Version = 0 }, ErrInvalidVersion},
		{"negative version", func(r *UploadInit) { r.Version = -3 }, ErrInvalidVersion},
		{"zero size", func(r *UploadInit) { r.FileSize = 0 }, ErrInvalidFileSize},
		{"over limit", func(r *UploadInit) { r.FileSize = (25 << 20) + 1 }, ErrFileTooLarge},
		{"wrong mime", func(r *UploadInit) { r.MimeType = "image/png" }, ErrUnsupportedMime},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(storagemocks.MockStorage)
			docs := new(repomocks.MockDocumentRepository)
			audits := new(repomocks.MockAuditRepository)
			svc := newUploadService(store, docs, testRecorder(t, audits), time.Now())

			req := valid
			tc.mutate(&req)

			_, err := svc.Init(context.Background(), &model.Principal{UserID: "u", Role: model.RoleStaff}, req)
			assert.ErrorIs(t, err, tc.wantErr)
			store.AssertNotCalled(t, "PresignPut", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUploadInit_SizeAtLimitAccepted(t *testing.T) {
	store := new(storagemocks.MockStorage)
	docs := new(repomocks.MockDocumentRepository)
	audits := new(repomocks.MockAuditRepository)
	store.On("PresignPut", mock.Anything, mock.Anything, mock.Anything).Return("https://u", nil)

	svc := newUploadService(store, docs, testRecorder(t, audits), time.Now())
	_, err := svc.Init(context.Background(), &model.Principal{UserID: "u", Role: model.RoleStaff}, UploadInit{
		Title:    "Max",
		DocType:  "GENERAL",
		Version:  1,
		FileSize: 25 << 20,
		MimeType: "application/pdf",
	})
	assert.NoError(t, err)
}

func TestUploadInit_EmptyDocTypeDefaults(t *testing.T) {
	store := new(storagemocks.MockStorage)
	docs := new(repomocks.MockDocumentRepository)
	audits := new(repomocks.MockAuditRepository)
	at := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	store.On("PresignPut", mock.Anything, mock.Anything, mock.Anything).Return("https://u", nil)

	svc := newUploadService(store, docs, testRecorder(t, audits), at)
	res, err := svc.Init(context.Background(), &model.Principal{UserID: "u", Role: model.RoleStaff}, UploadInit{
		Title:    "Untyped",
		DocType:  "  ",
		Version:  1,
		FileSize: 10,
		MimeType: "application/pdf",
	})
	require.NoError(t, err)

	intent, err := token.Redeem(res.FinalizeToken, testUploadSecret, at)
	require.NoError(t, err)
	assert.Equal(t, "GENERAL", intent.DocType)
}

func issueTestToken(t *testing.T, intent token.Intent, at time.Time) string {
	t.Helper()
	tok, err := token.Issue(intent, testUploadSecret, at)
	require.NoError(t, err)
	return tok
}

func baseIntent() token.Intent {
	return token.Intent{
		UID:      "abc123",
		Path:     "2025/abc123/v1.pdf",
		UserID:   "user-1",
		Title:    "Contract",
		DocType:  "CONTRACT",
		Version:  1,
		FileSize: 512,
		MimeType: "application/pdf",
	}
}

func TestUploadComplete_Success(t *testing.T) {
	store := new(storagemocks.MockStorage)
	docs := new(repomocks.MockDocumentRepository)
	audits := new(repomocks.MockAuditRepository)
	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	intent := baseIntent()
	tok := issueTestToken(t, intent, at)

	store.On("List", mock.Anything, "2025/abc123/").
		Return([]storage.ObjectInfo{{Key: "2025/abc123/v1.pdf", Size: 512}}, nil)
	docs.On("Create", mock.Anything, mock.MatchedBy(func(d *model.Document) bool {
		return d.DocUID == "abc123" &&
			d.DocType == "CONTRACT" &&
			d.Version == 1 &&
			d.StoragePath == "2025/abc123/v1.pdf" &&
			d.CreatedBy == "user-1" &&
			!d.LegalHold
	})).Return(&model.Document{DocUID: "abc123"}, nil)
	audits.On("Insert", mock.Anything, mock.MatchedBy(func(ev *model.AuditEvent) bool {
		return ev.Action == model.ActionUploadDocument && ev.Outcome == model.OutcomeAllow
	})).Return(nil)

	svc := newUploadService(store, docs, testRecorder(t, audits), at.Add(time.Minute))
	res, err := svc.Complete(context.Background(), &model.Principal{UserID: "user-1", Role: model.RoleStaff}, UploadComplete{
		FinalizeToken: tok,
		DocUID:        "abc123",
		StoragePath:   "2025/abc123/v1.pdf",
	}, model.RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.DocUID)
	assert.Equal(t, "2025/abc123/v1.pdf", res.StoragePath)

	store.AssertExpectations(t)
	docs.AssertExpectations(t)
	audits.AssertExpectations(t)
}

func TestUploadComplete_ExpiredToken(t *testing.T) {
	store := new(storagemocks.MockStorage)
	docs := new(repomocks.MockDocumentRepository)
	audits := new(repomocks.MockAuditRepository)
	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	tok := issueTestToken(t, baseIntent(), at)

	audits.On("Insert", mock.Anything, mock.MatchedBy(func(ev *model.AuditEvent) bool {
		return ev.Outcome == model.OutcomeDeny && ev.Reason == model.ReasonTokenExpired
	})).Return(nil)

	// Redemption lands past the token lifetime even though the transfer may
	// have succeeded; the document must not be registered.
	svc := newUploadService(store, docs, testRecorder(t, audits), at.Add(token.TTL+time.Millisecond))
	_, err := svc.Complete(context.Background(), &model.Principal{UserID: "user-1", Role: model.RoleStaff}, UploadComplete{
		FinalizeToken: tok,
		DocUID:        "abc123",
		StoragePath:   "2025/abc123/v1.pdf",
	}, model.RequestMeta{})
	assert.ErrorIs(t, err, ErrTokenExpired)
	docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	audits.AssertExpectations(t)
}

func TestUploadComplete_BadSignature(t *testing.T) {
	store := new(storagemocks.MockStorage)
	docs := new(repomocks.MockDocumentRepository)
	audits := new(repomocks.MockAuditRepository)
	at := time.Now()

	other, err := token.Issue(baseIntent(), []byte("some-other-secret"), at)
	require.NoError(t, err)

	audits.On("Insert", mock.Anything, mock.MatchedBy(func(ev *model.AuditEvent) bool {
		return ev.Reason == model.ReasonTokenSignature
	})).Return(nil)

	svc := newUploadService(store, docs, testRecorder(t, audits), at)
	_, err = svc.Complete(context.Background(), &model.Principal{UserID: "user-1", Role: model.RoleStaff}, UploadComplete{
		FinalizeToken: other,
		DocUID:        "abc123",
		StoragePath:   "2025/abc123/v1.pdf",
	}, model.RequestMeta{})
	assert.ErrorIs(t, err, ErrTokenSignature)
	audits.AssertExpectations(t)
}

func TestUploadComplete_UserMismatch(t *testing.T) {
	store := new(storagemocks.MockStorage)
	docs := new(repomocks.MockDocumentRepository)
	audits := new(repomocks.MockAuditRepository)
	at := time.Now()

	tok := issueTestToken(t, baseIntent(), at)

	audits.On("Insert", mock.Anything, mock.MatchedBy(func(ev *model.AuditEvent) bool {
		return ev.Reason == model.ReasonTokenBinding
	})).Return(nil)

	svc := newUploadService(store, docs, testRecorder(t, audits), at)
	_, err := svc.Complete(context.Background(), &model.Principal{UserID: "somebody-else", Role: model.RoleStaff}, UploadComplete{
		FinalizeToken: tok,
		DocUID:        "abc123",
		StoragePath:   "2025/abc123/v1.pdf",
	}, model.RequestMeta{})
	assert.ErrorIs(t, err, ErrUserMismatch)
	store.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestUploadComplete_BindingMismatch(t *testing.T) {
	store := new(storagemocks.MockStorage)
	docs := new(repomocks.MockDocumentRepository)
	audits := new(repomocks.MockAuditRepository)
	at := time.Now()

	tok := issueTestToken(t, baseIntent(), at)

	audits.On("Insert", mock.Anything, mock.Anything).Return(nil)

	svc := newUploadService(store, docs, testRecorder(t, audits), at)
	_, err := svc.Complete(context.Background(), &model.Principal{UserID: "user-1", Role: model.RoleStaff}, UploadComplete{
		FinalizeToken: tok,
		DocUID:        "abc123",
		StoragePath:   "2025/abc123/v9.pdf",
	}, model.RequestMeta{})
	assert.ErrorIs(t, err, ErrBindingMismatch)
	store.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestUploadComplete_ObjectMissing(t *testing.T) {
	store := new(storagemocks.MockStorage)
	docs := new(repomocks.MockDocumentRepository)
	audits := new(repomocks.MockAuditRepository)
	at := time.Now()

	tok := issueTestToken(t, baseIntent(), at)

	store.On("List", mock.Anything, "2025/abc123/").Return([]storage.ObjectInfo{}, nil)
	audits.On("Insert", mock.Anything, mock.MatchedBy(func(ev *model.AuditEvent) bool {
		return ev.Reason == model.ReasonObjectMissing
	})).Return(nil)

	svc := newUploadService(store, docs, testRecorder(t, audits), at)
	_, err := svc.Complete(context.Background(), &model.Principal{UserID: "user-1", Role: model.RoleStaff}, UploadComplete{
		FinalizeToken: tok,
		DocUID:        "abc123",
		StoragePath:   "2025/abc123/v1.pdf",
	}, model.RequestMeta{})
	assert.ErrorIs(t, err, ErrObjectMissing)
	docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	audits.AssertExpectations(t)
}

func TestUploadComplete_DuplicateConflict(t *testing.T) {
	store := new(storagemocks.MockStorage)
	docs := new(repomocks.MockDocumentRepository)
	audits := new(repomocks.MockAuditRepository)
	at := time.Now()

	tok := issueTestToken(t, baseIntent(), at)

	store.On("List", mock.Anything, "2025/abc123/").
		Return([]storage.ObjectInfo{{Key: "2025/abc123/v1.pdf"}}, nil)
	docs.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrDuplicate)
	audits.On("Insert", mock.Anything, mock.MatchedBy(func(ev *model.AuditEvent) bool {
		return ev.Reason == model.ReasonDuplicate
	})).Return(nil)

	svc := newUploadService(store, docs, testRecorder(t, audits), at)
	_, err := svc.Complete(context.Background(), &model.Principal{UserID: "user-1", Role: model.RoleStaff}, UploadComplete{
		FinalizeToken: tok,
		DocUID:        "abc123",
		StoragePath:   "2025/abc123/v1.pdf",
	}, model.RequestMeta{})
	assert.ErrorIs(t, err, ErrDuplicateDocument)
	audits.AssertExpectations(t)
}

func TestUploadComplete_MissingFields(t *testing.T) {
	store := new(storagemocks.MockStorage)
	docs := new(repomocks.MockDocumentRepository)
	audits := new(repomocks.MockAuditRepository)

	svc := newUploadService(store, docs, testRecorder(t, audits), time.Now())
	_, err := svc.Complete(context.Background(), &model.Principal{UserID: "u", Role: model.RoleStaff}, UploadComplete{}, model.RequestMeta{})
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNormalizeDocType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"invoice", "INVOICE"},
		{"invoice report", "INVOICE_REPORT"},
		{"  payroll  ", "PAYROLL"},
		{"a/b-c", "A_B_C"},
		{strings.Repeat("X", 60), strings.Repeat("X", 48)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeDocType(tc.in), tc.in)
	}
}
