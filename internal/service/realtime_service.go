package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zeroslashagency/epsilon-attendance-api/pkg/jobs"
)

// PunchChangeEvent is the message published on the punch change channel by
// the device ingestion sync.
type PunchChangeEvent struct {
	EmployeeCode string `json:"employee_code"`
	Date         string `json:"date"`
}

// RealtimeService subscribes to punch change notifications and feeds rebuild
// jobs onto the worker queue, so stored records converge shortly after new
// raw events land.
type RealtimeService struct {
	client  *redis.Client
	channel string
	queue   *jobs.Queue
	logger  *zap.Logger
}

// NewRealtimeService constructs the service around an existing Redis client.
func NewRealtimeService(client *redis.Client, channel string, rebuild func(ctx context.Context, employeeCode string, date time.Time) error, queueCfg jobs.QueueConfig, logger *zap.Logger) *RealtimeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	queue := jobs.NewQueue("attendance-rebuild", func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(PunchChangeEvent)
		if !ok {
			logger.Warn("rebuild job with unexpected payload", zap.String("job_id", job.ID))
			return nil
		}
		date, err := time.Parse("2006-01-02", event.Date)
		if err != nil {
			logger.Warn("rebuild job with invalid date", zap.String("date", event.Date))
			return nil
		}
		return rebuild(ctx, event.EmployeeCode, date)
	}, queueCfg)

	return &RealtimeService{client: client, channel: channel, queue: queue, logger: logger}
}

// Start launches the rebuild workers and the subscription loop. It returns
// immediately; both run until the context is cancelled.
func (s *RealtimeService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.consume(ctx)
}

// Stop drains the worker queue.
func (s *RealtimeService) Stop() {
	s.queue.Stop()
}

// NotifyPunchChange publishes the event on the shared channel, so this and
// every other subscribed instance picks up the rebuild.
func (s *RealtimeService) NotifyPunchChange(ctx context.Context, event PunchChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, payload).Err()
}

func (s *RealtimeService) consume(ctx context.Context) {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	s.logger.Info("subscribed to punch change channel", zap.String("channel", s.channel))
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event PunchChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.logger.Warn("malformed punch change message", zap.Error(err))
				continue
			}
			if event.EmployeeCode == "" || event.Date == "" {
				continue
			}
			if err := s.queue.Enqueue(jobs.Job{
				ID:      uuid.NewString(),
				Type:    "rebuild",
				Payload: event,
			}); err != nil {
				s.logger.Warn("failed to enqueue rebuild", zap.Error(err))
			}
		}
	}
}
