package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/classifier"
	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/delivery"
	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/events"
	"github.com/civicvoice/complaint-service/internal/realtime"
	"github.com/civicvoice/complaint-service/internal/repository"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type simClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type published struct {
	channel string
	msg     realtime.Message
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, msg realtime.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{channel: channel, msg: msg})
	return p.err
}

func (p *recordingPublisher) on(channel string) []realtime.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []realtime.Message
	for _, m := range p.messages {
		if m.channel == channel {
			out = append(out, m.msg)
		}
	}
	return out
}

type recordingQueue struct {
	mu      sync.Mutex
	intents []delivery.Intent
	err     error
}

func (q *recordingQueue) Enqueue(_ context.Context, intent delivery.Intent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.intents = append(q.intents, intent)
	return q.err
}

func (q *recordingQueue) snapshot() []delivery.Intent {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]delivery.Intent(nil), q.intents...)
}

type harness struct {
	clock         *simClock
	complaints    *repository.MemoryComplaintRepository
	users         *repository.MemoryUserRepository
	notifications *repository.MemoryNotificationRepository
	publisher     *recordingPublisher
	queue         *recordingQueue
	dispatcher    events.Dispatcher

	complaintSvc    *ComplaintService
	engagementSvc   *EngagementService
	notificationSvc *NotificationService
	statsSvc        *StatsService

	citizen  *domain.Actor
	roads    *domain.Actor
	lighting *domain.Actor
	admin    *domain.Actor
}

type harnessOption func(*harnessSettings)

type harnessSettings struct {
	lifecycle    config.LifecycleConfig
	notification config.NotificationConfig
	classifier   classifier.Classifier
}

func withClassifier(c classifier.Classifier) harnessOption {
	return func(s *harnessSettings) { s.classifier = c }
}

func withSideChannels() harnessOption {
	return func(s *harnessSettings) {
		s.notification.EnableEmail = true
		s.notification.EnableSMS = true
		s.notification.ClientURL = "https://civicvoice.in"
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	settings := harnessSettings{
		lifecycle: config.LifecycleConfig{
			SLAHours:       48,
			FilingPoints:   20,
			VotePoints:     5,
			DefaultCity:    "Amravati",
			ClassifyOnFile: true,
		},
		classifier: classifier.NewKeyword(),
	}
	for _, opt := range opts {
		opt(&settings)
	}

	h := &harness{
		clock:         &simClock{now: epoch},
		complaints:    repository.NewMemoryComplaintRepository(),
		users:         repository.NewMemoryUserRepository(),
		notifications: repository.NewMemoryNotificationRepository(),
		publisher:     &recordingPublisher{},
		queue:         &recordingQueue{},
	}
	logger := zap.NewNop()
	clock := Clock(h.clock.Now)
	h.dispatcher = events.NewInMemoryDispatcher(logger)

	h.complaintSvc = NewComplaintService(ComplaintDependencies{
		ComplaintRepo: h.complaints,
		Classifier:    settings.classifier,
		Dispatcher:    h.dispatcher,
		Config:        settings.lifecycle,
		Clock:         clock,
		Logger:        logger,
	})
	h.engagementSvc = NewEngagementService(EngagementDependencies{
		ComplaintRepo: h.complaints,
		Dispatcher:    h.dispatcher,
		Clock:         clock,
		Logger:        logger,
	})
	h.notificationSvc = NewNotificationService(NotificationDependencies{
		NotificationRepo: h.notifications,
		UserRepo:         h.users,
		Publisher:        h.publisher,
		Queue:            h.queue,
		Config:           settings.notification,
		Clock:            clock,
		Logger:           logger,
	})
	h.notificationSvc.RegisterHandlers(h.dispatcher)
	NewLedgerService(LedgerDependencies{
		UserRepo: h.users,
		Config:   settings.lifecycle,
		Logger:   logger,
	}).RegisterHandlers(h.dispatcher)
	h.statsSvc = NewStatsService(h.complaints, clock)

	h.citizen = h.addActor(t, &domain.Actor{
		Name: "Asha Patil", Email: "asha@example.in", Phone: "+919800000001",
		Role: domain.RoleCitizen, City: "Amravati",
	})
	h.roads = h.addActor(t, &domain.Actor{
		Name: "Roads Officer", Role: domain.RoleDepartment, Department: domain.DepartmentRoads,
	})
	h.lighting = h.addActor(t, &domain.Actor{
		Name: "Lighting Officer", Role: domain.RoleDepartment, Department: domain.DepartmentLighting,
	})
	h.admin = h.addActor(t, &domain.Actor{Name: "Commissioner Office", Role: domain.RoleAdmin})
	return h
}

func (h *harness) addActor(t *testing.T, actor *domain.Actor) *domain.Actor {
	t.Helper()
	actor.Active = true
	require.NoError(t, h.users.Create(context.Background(), actor))
	return actor
}

func (h *harness) file(t *testing.T, emergency bool) *domain.Complaint {
	t.Helper()
	c, err := h.complaintSvc.Create(context.Background(), h.citizen, ComplaintCreateInput{
		Title:       "Deep pothole on Station Road",
		Description: "A large pothole near the bus stop is damaging vehicles",
		Department:  domain.DepartmentRoads,
		Emergency:   &emergency,
	})
	require.NoError(t, err)
	return c
}

func (h *harness) points(t *testing.T, actor *domain.Actor) int {
	t.Helper()
	got, err := h.users.GetByID(context.Background(), actor.ID)
	require.NoError(t, err)
	return got.CivicPoints
}

func boolPtr(v bool) *bool { return &v }
