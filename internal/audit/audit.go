package audit

// Package audit emits structured access-decision events to the audit sink.
// Writes are best-effort: a sink failure must never block or precede the
// primary decision response, but it is made observable through a metric and
// a log line rather than silently discarded.

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"recordsapi/internal/model"
	"recordsapi/internal/repository"
)

// failureLog writes bare JSON lines; the global logger and its flags are left
// untouched.
var failureLog = log.New(os.Stdout, "", 0)

// Recorder appends audit events through an AuditRepository.
type Recorder struct {
	repo     repository.AuditRepository
	failures prometheus.Counter
}

// NewRecorder constructs a Recorder and registers its failure counter.
func NewRecorder(repo repository.AuditRepository, reg prometheus.Registerer) (*Recorder, error) {
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_write_failures_total",
		Help: "Total number of audit events that could not be persisted.",
	})
	if reg != nil {
		if err := reg.Register(failures); err != nil {
			return nil, err
		}
	}
	return &Recorder{repo: repo, failures: failures}, nil
}

// Record appends one audit event. Failures are counted and logged, never
// returned: every branch of an operation records its outcome regardless of
// whether earlier writes succeeded.
func (r *Recorder) Record(ctx context.Context, userID, action, docUID, outcome, reason string, meta model.RequestMeta) {
	ev := &model.AuditEvent{
		UserID:    userID,
		Action:    action,
		DocUID:    docUID,
		Outcome:   outcome,
		Reason:    reason,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.Insert(ctx, ev); err != nil {
		r.failures.Inc()
		logFailure(ev, err)
	}
}

func logFailure(ev *model.AuditEvent, err error) {
	b, mErr := json.Marshal(map[string]any{
		"level":     "error",
		"component": "audit",
		"event":     "audit_write_failed",
		"action":    ev.Action,
		"doc_uid":   ev.DocUID,
		"outcome":   ev.Outcome,
		"error":     err.Error(),
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
	})
	if mErr != nil {
		failureLog.Printf("audit write failed: %v", err)
		return
	}
	failureLog.Println(string(b))
}
