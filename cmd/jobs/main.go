// Command jobs runs the scheduled batch work: analytics aggregation,
// interview reminders, and weekly summaries. It is meant to be invoked
// from cron or a container scheduler with one subcommand per run.
//
// Usage:
//
//	jobs aggregate    recompute system and per-user analytics snapshots
//	jobs reminders    send interview reminders for tomorrow's interviews
//	jobs summaries    send weekly summary emails
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Akshit358/Job-Tracker-CRM/internal/config"
	"github.com/Akshit358/Job-Tracker-CRM/internal/mailer"
	sqliteRepo "github.com/Akshit358/Job-Tracker-CRM/internal/repository/sqlite"
	"github.com/Akshit358/Job-Tracker-CRM/internal/service"
)

const runTimeout = 10 * time.Minute

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: jobs <aggregate|reminders|summaries>")
		os.Exit(2)
	}
	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	smtp, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	})
	if err != nil {
		logger.Error("failed to create mailer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	dispatcher := mailer.NewDispatcher(smtp, db.EmailLogs, logger)

	analytics := service.NewAnalyticsService(db.Applications, db.Users, db.Analytics, logger)
	reminders := service.NewReminderService(db.Applications, db.Users, db.Activities, dispatcher, logger)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	var report *service.BatchReport
	switch command {
	case "aggregate":
		report, err = analytics.RunAll(ctx)
	case "reminders":
		report, err = reminders.SendInterviewReminders(ctx)
	case "summaries":
		report, err = reminders.SendWeeklySummaries(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\nusage: jobs <aggregate|reminders|summaries>\n", command)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("job failed",
			slog.String("command", command),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.Info("job finished",
		slog.String("command", command),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed()),
	)
	if report.Failed() > 0 {
		os.Exit(1)
	}
}
