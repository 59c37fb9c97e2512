package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recordsapi/internal/model"
	repoMocks "recordsapi/internal/repository/mocks"
)

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()
	meta := model.RequestMeta{IP: "10.0.0.1", UserAgent: "test-agent"}

	t.Run("persists event", func(t *testing.T) {
		mRepo := new(repoMocks.MockAuditRepository)
		mRepo.On("Insert", ctx, mock.MatchedBy(func(ev *model.AuditEvent) bool {
			return ev.UserID == "U1" &&
				ev.Action == model.ActionResolveBarcode &&
				ev.DocUID == "A1" &&
				ev.Outcome == model.OutcomeDeny &&
				ev.Reason == model.ReasonScopeMismatch &&
				ev.IP == "10.0.0.1" &&
				ev.UserAgent == "test-agent" &&
				!ev.CreatedAt.IsZero()
		})).Return(nil)

		rec, err := NewRecorder(mRepo, prometheus.NewRegistry())
		require.NoError(t, err)

		rec.Record(ctx, "U1", model.ActionResolveBarcode, "A1", model.OutcomeDeny, model.ReasonScopeMismatch, meta)
		mRepo.AssertExpectations(t)
	})

	t.Run("sink failure is swallowed but counted", func(t *testing.T) {
		mRepo := new(repoMocks.MockAuditRepository)
		mRepo.On("Insert", ctx, mock.Anything).Return(errors.New("sink down"))

		rec, err := NewRecorder(mRepo, prometheus.NewRegistry())
		require.NoError(t, err)

		rec.Record(ctx, "U1", model.ActionUploadDocument, "A1", model.OutcomeAllow, "", meta)

		assert.Equal(t, 1.0, testutil.ToFloat64(rec.failures))
		mRepo.AssertExpectations(t)
	})

	t.Run("sink failure leaves the global logger alone", func(t *testing.T) {
		var buf bytes.Buffer
		prevOut := failureLog
		failureLog = log.New(&buf, "", 0)
		defer func() { failureLog = prevOut }()

		prevFlags := log.Flags()
		log.SetFlags(log.LstdFlags)
		defer log.SetFlags(prevFlags)

		mRepo := new(repoMocks.MockAuditRepository)
		mRepo.On("Insert", ctx, mock.Anything).Return(errors.New("sink down"))

		rec, err := NewRecorder(mRepo, prometheus.NewRegistry())
		require.NoError(t, err)

		rec.Record(ctx, "U1", model.ActionDeleteDocument, "A1", model.OutcomeAllow, model.ReasonManualDelete, meta)

		assert.Equal(t, log.LstdFlags, log.Flags())

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "audit_write_failed", line["event"])
		assert.Equal(t, "sink down", line["error"])
	})
}
