package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/engine"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/reminders"
)

// Dispatcher delivers notifications. The scheduler decides what is due;
// the dispatcher only sends.
type Dispatcher interface {
	// Dispatch alerts the user to one due instance.
	Dispatch(ctx context.Context, userID int64, inst models.Instance) error
	// Summary sends the day's plan once, after the user wakes up.
	Summary(ctx context.Context, userID int64, date string, insts []models.Instance) error
}

type Scheduler struct {
	svc           *reminders.Service
	dispatcher    Dispatcher
	checkInterval time.Duration
	lead          time.Duration
	notifyCh      chan struct{}

	mu        sync.Mutex
	sent      map[string]time.Time // uniqueId@moment -> when it was sent
	summaries map[int64]string     // user -> date of last summary
}

func New(svc *reminders.Service, dispatcher Dispatcher, checkInterval, lead time.Duration) *Scheduler {
	return &Scheduler{
		svc:           svc,
		dispatcher:    dispatcher,
		checkInterval: checkInterval,
		lead:          lead,
		notifyCh:      make(chan struct{}, 1),
		sent:          make(map[string]time.Time),
		summaries:     make(map[int64]string),
	}
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		case <-s.notifyCh:
			s.check(ctx)
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	users, err := s.svc.Users(ctx)
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		return
	}
	for _, userID := range users {
		s.checkUser(ctx, userID)
	}
	s.prune(s.svc.Now())
}

func (s *Scheduler) checkUser(ctx context.Context, userID int64) {
	now, settings, err := s.svc.LocalNow(ctx, userID)
	if err != nil {
		log.Printf("Failed to get settings for %d: %v", userID, err)
		return
	}
	today := clock.FormatDate(now)
	insts, err := s.svc.Instances(ctx, userID, today)
	if err != nil {
		log.Printf("Failed to expand reminders for %d: %v", userID, err)
		return
	}

	asleep := settings.IsSleepTime(now)
	if !asleep {
		s.sendSummaryIfNeeded(ctx, userID, today, insts)
	}

	// A lead that crosses midnight reaches into tomorrow's instances.
	upcoming, err := s.svc.Upcoming(ctx, userID, s.lead)
	if err != nil {
		log.Printf("Failed to expand upcoming reminders for %d: %v", userID, err)
		return
	}
	for _, inst := range upcoming {
		if !s.due(inst, now) {
			continue
		}
		// Held, not dropped: it goes out at wake time if still actionable.
		if asleep && !inst.SourceReminder.IsImportant {
			continue
		}

		key := inst.UniqueID + "@" + inst.At.Format(time.RFC3339)
		if s.wasSent(key) {
			continue
		}
		if err := s.dispatcher.Dispatch(ctx, userID, inst); err != nil {
			log.Printf("Failed to dispatch %s to user %d: %v", inst.UniqueID, userID, err)
			continue
		}
		s.markSent(key, now)
		log.Printf("Sent reminder %s to user %d", inst.UniqueID, userID)
	}
}

// due reports whether inst is actionable and its moment is within the
// notification lead but not past its two-hour window.
func (s *Scheduler) due(inst models.Instance, now time.Time) bool {
	if !inst.Actionable() || !inst.HasTime {
		return false
	}
	until := inst.At.Sub(now)
	return until <= s.lead && -until <= engine.MissedAfter
}

func (s *Scheduler) sendSummaryIfNeeded(ctx context.Context, userID int64, today string, insts []models.Instance) {
	s.mu.Lock()
	done := s.summaries[userID] == today
	s.mu.Unlock()
	if done || len(insts) == 0 {
		return
	}

	if err := s.dispatcher.Summary(ctx, userID, today, insts); err != nil {
		log.Printf("Failed to send daily summary to %d: %v", userID, err)
		return
	}

	s.mu.Lock()
	s.summaries[userID] = today
	s.mu.Unlock()
	log.Printf("Sent daily summary to user %d", userID)
}

func (s *Scheduler) wasSent(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sent[key]
	return ok
}

func (s *Scheduler) markSent(key string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[key] = at
}

// prune forgets deliveries older than two days.
func (s *Scheduler) prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, at := range s.sent {
		if now.Sub(at) > 48*time.Hour {
			delete(s.sent, key)
		}
	}
}
