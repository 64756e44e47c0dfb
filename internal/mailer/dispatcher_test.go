package mailer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
)

type stubMailer struct {
	err   error
	calls int
}

func (s *stubMailer) Send(ctx context.Context, to, subject, body string) error {
	s.calls++
	return s.err
}

type recordingLogRepo struct {
	entries []*model.EmailLog
	err     error
}

func (r *recordingLogRepo) Create(ctx context.Context, entry *model.EmailLog) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingLogRepo) ListRecent(ctx context.Context, limit int) ([]model.EmailLog, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDispatch_SuccessWritesLog(t *testing.T) {
	mail := &stubMailer{}
	logs := &recordingLogRepo{}
	d := NewDispatcher(mail, logs, testLogger())

	ok := d.Dispatch(context.Background(), model.EmailVerification, "u1", "a@example.com", "Verify", "body")
	if !ok {
		t.Fatal("Dispatch() = false, want true")
	}
	if len(logs.entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(logs.entries))
	}
	entry := logs.entries[0]
	if !entry.Success || entry.ErrorMessage != "" {
		t.Errorf("entry = %+v, want success with no error message", entry)
	}
	if entry.Kind != model.EmailVerification || entry.UserID != "u1" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestDispatch_FailureWritesLogWithError(t *testing.T) {
	mail := &stubMailer{err: errors.New("connection refused")}
	logs := &recordingLogRepo{}
	d := NewDispatcher(mail, logs, testLogger())

	ok := d.Dispatch(context.Background(), model.EmailBroadcast, "", "b@example.com", "Hi", "body")
	if ok {
		t.Fatal("Dispatch() = true, want false")
	}
	if len(logs.entries) != 1 {
		t.Fatalf("log entries = %d, want 1 even on failure", len(logs.entries))
	}
	entry := logs.entries[0]
	if entry.Success {
		t.Error("entry.Success = true for a failed send")
	}
	if entry.ErrorMessage != "connection refused" {
		t.Errorf("ErrorMessage = %q", entry.ErrorMessage)
	}
}

func TestDispatch_LogWriteFailureDoesNotChangeOutcome(t *testing.T) {
	mail := &stubMailer{}
	logs := &recordingLogRepo{err: errors.New("disk full")}
	d := NewDispatcher(mail, logs, testLogger())

	if ok := d.Dispatch(context.Background(), model.EmailWeeklySummary, "u1", "c@example.com", "Hi", "body"); !ok {
		t.Fatal("Dispatch() = false, a lost log row must not look like a send failure")
	}
}

func TestNewSMTPMailer_Validation(t *testing.T) {
	if _, err := NewSMTPMailer(SMTPConfig{From: "x@example.com"}); err == nil {
		t.Error("NewSMTPMailer() accepted empty host")
	}
	if _, err := NewSMTPMailer(SMTPConfig{Host: "localhost"}); err == nil {
		t.Error("NewSMTPMailer() accepted empty from address")
	}

	m, err := NewSMTPMailer(SMTPConfig{Host: "localhost", From: "x@example.com"})
	if err != nil {
		t.Fatalf("NewSMTPMailer() error = %v", err)
	}
	if m.cfg.Port != 587 {
		t.Errorf("default port = %d, want 587", m.cfg.Port)
	}
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "localhost", From: "x@example.com"})
	if err != nil {
		t.Fatalf("NewSMTPMailer() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, "a@example.com", "Hi", "body"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Send(cancelled) error = %v, want context.Canceled", err)
	}
}
