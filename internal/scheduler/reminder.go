// Package scheduler runs the daily spin reminder.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// ReminderText is the fixed message sent to every account once a day.
const ReminderText = "🎉 Don't forget to spin today and maintain your streak!"

// AccountLister enumerates the recipients of the reminder fan-out.
type AccountLister interface {
	ListAllIDs(ctx context.Context) ([]int64, error)
}

// Messenger delivers the reminder text.
type Messenger interface {
	SendText(ctx context.Context, recipientID int64, text string) error
}

// Reminder fans a daily nudge out to all accounts. It reads nothing but the
// account id list and mutates no game state.
type Reminder struct {
	accounts  AccountLister
	messenger Messenger
	sched     gocron.Scheduler
}

// NewReminder creates a new Reminder instance.
func NewReminder(accounts AccountLister, messenger Messenger) *Reminder {
	return &Reminder{
		accounts:  accounts,
		messenger: messenger,
	}
}

// Start schedules the daily reminder at the given local time.
func (r *Reminder) Start(hour, minute int) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := r.SendReminders(ctx); err != nil {
				log.Error().Err(err).Msg("Daily reminder run failed")
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}

	sched.Start()
	r.sched = sched

	log.Info().Int("hour", hour).Int("minute", minute).Msg("Daily reminder scheduled")
	return nil
}

// Stop shuts the scheduler down.
func (r *Reminder) Stop() {
	if r.sched != nil {
		if err := r.sched.Shutdown(); err != nil {
			log.Warn().Err(err).Msg("Failed to shut down reminder scheduler")
		}
	}
}

// SendReminders delivers the reminder to every account. Failures are isolated
// per recipient; one broken delivery never aborts the rest.
func (r *Reminder) SendReminders(ctx context.Context) error {
	ids, err := r.accounts.ListAllIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list reminder recipients: %w", err)
	}

	sent := 0
	for _, id := range ids {
		if err := r.messenger.SendText(ctx, id, ReminderText); err != nil {
			log.Warn().Err(err).Int64("recipient_id", id).Msg("Reminder delivery failed")
			continue
		}
		sent++
	}

	log.Info().Int("sent", sent).Int("total", len(ids)).Msg("Daily reminders sent")
	return nil
}
