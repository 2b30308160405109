package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/servicebook-backend/internal/logger"
	"github.com/Ananth-NQI/servicebook-backend/internal/models"
	"github.com/Ananth-NQI/servicebook-backend/internal/services"
	"github.com/Ananth-NQI/servicebook-backend/internal/utils"
)

// RunKind tells Run which schedule fired
type RunKind string

const (
	// DailyRun sends outstanding reminders plus the staff digest.
	DailyRun RunKind = "daily"
	// HourlyRun only catches reminders the daily run has not sent yet.
	HourlyRun RunKind = "hourly"
)

// DefaultRunTimeout bounds a single run
const DefaultRunTimeout = 10 * time.Minute

// BookingSource is what the reminder job reads and marks
type BookingSource interface {
	ConfirmedOn(ctx context.Context, date string) ([]*models.Booking, error)
	Stats(ctx context.Context) (*models.BookingStats, error)
	MarkReminded(ctx context.Context, id, date string) error
	MarkStaffReminded(ctx context.Context, id, date string) error
}

// Mailer delivers a rendered email and reports the outcome
type Mailer interface {
	Deliver(ctx context.Context, e services.Email) error
}

// Reminder holds the emails still owed for one booking due tomorrow. A copy
// with an empty To was already sent, or has no recipient.
type Reminder struct {
	Booking  *models.Booking
	Customer services.Email
	Staff    services.Email
}

// Plan is everything one run should send
type Plan struct {
	Date      string
	Reminders []Reminder
	Digest    *services.Email
}

// Tick decides what to send at now. snapshot may hold any bookings; only
// confirmed ones dated tomorrow are considered. Customer and staff reminders
// already recorded for tomorrow are not repeated, but every due booking
// still appears in the digest.
func Tick(now time.Time, snapshot []*models.Booking, stats *models.BookingStats, withDigest bool, templates *services.TemplateService) Plan {
	plan := Plan{Date: utils.TomorrowDate(now)}

	var due []*models.Booking
	for _, b := range snapshot {
		if b.Status != models.BookingStatusConfirmed || b.Date != plan.Date {
			continue
		}
		due = append(due, b)

		customerDue := b.ReminderSentFor != plan.Date
		staffDue := templates.StaffEmail() != "" && b.StaffReminderSentFor != plan.Date
		if !customerDue && !staffDue {
			continue
		}
		r := Reminder{Booking: b}
		if customerDue {
			r.Customer = templates.ReminderCustomer(b)
		}
		if staffDue {
			r.Staff = templates.ReminderStaff(b)
		}
		plan.Reminders = append(plan.Reminders, r)
	}

	if withDigest && len(due) > 0 && templates.StaffEmail() != "" {
		digest := templates.Digest(plan.Date, due, stats)
		plan.Digest = &digest
	}
	return plan
}

// RunSummary reports the outcome of one run
type RunSummary struct {
	Kind       RunKind
	Date       string
	Due        int
	Reminded   int
	Failed     int
	DigestSent bool
}

// ReminderJob sends next-day reminders and the daily digest
type ReminderJob struct {
	bookings  BookingSource
	mailer    Mailer
	templates *services.TemplateService
	clock     utils.Clock
	timeout   time.Duration

	mu   sync.Mutex // one run at a time
	cron *cron.Cron
}

// NewReminderJob creates a new reminder job
func NewReminderJob(bookings BookingSource, mailer Mailer, templates *services.TemplateService, clock utils.Clock) *ReminderJob {
	return &ReminderJob{
		bookings:  bookings,
		mailer:    mailer,
		templates: templates,
		clock:     clock,
		timeout:   DefaultRunTimeout,
	}
}

// Run executes one firing. Individual delivery failures are logged and
// counted, never returned; only failing to read bookings aborts the run.
func (j *ReminderJob) Run(ctx context.Context, kind RunKind) (RunSummary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.clock.Now()
	tomorrow := utils.TomorrowDate(now)
	summary := RunSummary{Kind: kind, Date: tomorrow}

	snapshot, err := j.bookings.ConfirmedOn(ctx, tomorrow)
	if err != nil {
		return summary, fmt.Errorf("load bookings for %s: %w", tomorrow, err)
	}

	var stats *models.BookingStats
	if kind == DailyRun {
		if stats, err = j.bookings.Stats(ctx); err != nil {
			// The digest still goes out without counts.
			logger.Log.WithError(err).Warn("Could not load booking stats for digest")
		}
	}

	plan := Tick(now, snapshot, stats, kind == DailyRun, j.templates)
	summary.Due = len(plan.Reminders)

	for _, r := range plan.Reminders {
		if j.remind(ctx, r, plan.Date) {
			summary.Reminded++
		} else {
			summary.Failed++
		}
	}

	if plan.Digest != nil {
		if err := j.send(ctx, *plan.Digest); err != nil {
			logger.Log.WithError(err).Error("Failed to send daily digest")
		} else {
			summary.DigestSent = true
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"kind":     kind,
		"date":     summary.Date,
		"due":      summary.Due,
		"reminded": summary.Reminded,
		"failed":   summary.Failed,
		"digest":   summary.DigestSent,
	}).Info("Reminder run finished")

	return summary, nil
}

// remind sends the emails still owed for one booking and records each one
// that went out. It reports false when the customer reminder failed.
func (j *ReminderJob) remind(ctx context.Context, r Reminder, date string) (ok bool) {
	log := logger.Log.WithField("booking_id", r.Booking.ID)
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("Panic while sending reminder: %v", p)
			ok = false
		}
	}()

	ok = true
	if r.Customer.To != "" {
		if err := j.send(ctx, r.Customer); err != nil {
			log.WithError(err).Error("Failed to send customer reminder")
			ok = false
		} else if err := j.bookings.MarkReminded(ctx, r.Booking.ID, date); err != nil {
			log.WithError(err).Warn("Customer reminder sent but could not be recorded")
		}
	}
	if r.Staff.To != "" {
		if err := j.send(ctx, r.Staff); err != nil {
			log.WithError(err).Error("Failed to send staff reminder")
		} else if err := j.bookings.MarkStaffReminded(ctx, r.Booking.ID, date); err != nil {
			log.WithError(err).Warn("Staff reminder sent but could not be recorded")
		}
	}
	return ok
}

func (j *ReminderJob) send(ctx context.Context, e services.Email) error {
	return j.mailer.Deliver(ctx, e)
}

// Start registers the daily and hourly runs and starts the scheduler.
// An empty hourlySpec disables the hourly run.
func (j *ReminderJob) Start(dailySpec, hourlySpec string) error {
	c := cron.New(
		cron.WithLocation(time.Local),
		cron.WithChain(cron.Recover(cron.PrintfLogger(logger.Log))),
	)

	if _, err := c.AddFunc(dailySpec, j.fire(DailyRun)); err != nil {
		return fmt.Errorf("schedule daily reminders %q: %w", dailySpec, err)
	}
	if hourlySpec != "" {
		if _, err := c.AddFunc(hourlySpec, j.fire(HourlyRun)); err != nil {
			return fmt.Errorf("schedule hourly reminders %q: %w", hourlySpec, err)
		}
	}

	j.cron = c
	c.Start()
	logger.Log.WithFields(logrus.Fields{"daily": dailySpec, "hourly": hourlySpec}).Info("Scheduled reminder jobs")
	return nil
}

// Stop halts scheduling and waits for a running job to finish.
func (j *ReminderJob) Stop() {
	if j.cron == nil {
		return
	}
	logger.Log.Info("Stopping scheduled reminder jobs...")
	<-j.cron.Stop().Done()
}

func (j *ReminderJob) fire(kind RunKind) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		logger.Log.WithField("kind", kind).Info("Starting reminder job...")
		if _, err := j.Run(ctx, kind); err != nil {
			logger.Log.WithError(err).WithField("kind", kind).Error("Reminder job failed")
		}
	}
}
