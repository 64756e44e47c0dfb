package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
)

func TestSendInterviewReminders(t *testing.T) {
	db := newTestDB(t)
	dispatcher, fm := newTestDispatcher(t, db)
	svc := NewReminderService(db.Applications, db.Users, db.Activities, dispatcher, newTestLogger())
	ctx := context.Background()

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	tomorrow := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)

	user := seedUser(t, db, "candidate@example.com", true)
	app := seedApplication(t, db, user.ID, "Acme", model.StatusInterviewing, now.AddDate(0, 0, -10))
	app.InterviewDate = &tomorrow
	if err := db.Applications.Update(ctx, app); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Interview today, not tomorrow: no reminder.
	today := now.Add(2 * time.Hour)
	other := seedApplication(t, db, user.ID, "Globex", model.StatusInterviewing, now.AddDate(0, 0, -10))
	other.InterviewDate = &today
	if err := db.Applications.Update(ctx, other); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	report, err := svc.SendInterviewReminders(ctx)
	if err != nil {
		t.Fatalf("SendInterviewReminders() error = %v", err)
	}
	if report.Succeeded != 1 || report.Failed() != 0 {
		t.Fatalf("report = %+v, want 1 success", report)
	}
	if len(fm.sent) != 1 {
		t.Fatalf("sent = %d emails, want 1", len(fm.sent))
	}
	if fm.sent[0].Subject != "Interview Reminder: Engineer at Acme" {
		t.Errorf("Subject = %q", fm.sent[0].Subject)
	}

	// The delivered reminder lands on the activity trail.
	activities, err := db.Activities.ListForApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("ListForApplication() error = %v", err)
	}
	if len(activities) != 1 || activities[0].Kind != model.ActivityReminderSent {
		t.Fatalf("activities = %+v, want one reminder_sent", activities)
	}
}

func TestSendInterviewReminders_DeliveryFailureIsReported(t *testing.T) {
	db := newTestDB(t)
	dispatcher, fm := newTestDispatcher(t, db)
	svc := NewReminderService(db.Applications, db.Users, db.Activities, dispatcher, newTestLogger())
	ctx := context.Background()

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	tomorrow := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)

	user := seedUser(t, db, "bounce@example.com", true)
	fm.failFor[user.Email] = true
	app := seedApplication(t, db, user.ID, "Acme", model.StatusInterviewing, now.AddDate(0, 0, -3))
	app.InterviewDate = &tomorrow
	if err := db.Applications.Update(ctx, app); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	report, err := svc.SendInterviewReminders(ctx)
	if err != nil {
		t.Fatalf("SendInterviewReminders() error = %v", err)
	}
	if report.Succeeded != 0 || report.Failed() != 1 {
		t.Fatalf("report = %+v, want 1 failure", report)
	}

	// No reminder_sent activity for a failed delivery, but the attempt is
	// still in the email log.
	activities, err := db.Activities.ListForApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("ListForApplication() error = %v", err)
	}
	if len(activities) != 0 {
		t.Errorf("activities = %d, want 0", len(activities))
	}
	logs, err := db.EmailLogs.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(logs) != 1 || logs[0].Success {
		t.Fatalf("logs = %+v, want one failed entry", logs)
	}
}

func TestSendWeeklySummaries(t *testing.T) {
	db := newTestDB(t)
	dispatcher, fm := newTestDispatcher(t, db)
	svc := NewReminderService(db.Applications, db.Users, db.Activities, dispatcher, newTestLogger())
	ctx := context.Background()

	busy := seedUser(t, db, "busy@example.com", true)
	seedApplication(t, db, busy.ID, "Acme", model.StatusApplied, time.Now())
	seedApplication(t, db, busy.ID, "Globex", model.StatusInterviewing, time.Now())

	// Verified but nothing created this week.
	seedUser(t, db, "idle@example.com", true)

	// Unverified users never get summaries, active or not.
	unverified := seedUser(t, db, "unverified@example.com", false)
	seedApplication(t, db, unverified.ID, "Initech", model.StatusApplied, time.Now())

	report, err := svc.SendWeeklySummaries(ctx)
	if err != nil {
		t.Fatalf("SendWeeklySummaries() error = %v", err)
	}
	if report.Succeeded != 1 || report.Failed() != 0 {
		t.Fatalf("report = %+v, want 1 success", report)
	}
	if len(fm.sent) != 1 || fm.sent[0].To != busy.Email {
		t.Fatalf("sent = %+v, want one email to %s", fm.sent, busy.Email)
	}
	if fm.sent[0].Subject != "Your Weekly Job Application Summary" {
		t.Errorf("Subject = %q", fm.sent[0].Subject)
	}
	if !strings.Contains(fm.sent[0].Body, "Engineer at Acme (Applied)") {
		t.Errorf("Body missing application line:\n%s", fm.sent[0].Body)
	}
	if !strings.Contains(fm.sent[0].Body, "2 applications this week") {
		t.Errorf("Body missing count line:\n%s", fm.sent[0].Body)
	}
}
