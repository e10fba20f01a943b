package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"codequest/internal/metrics"
)

const (
	TaskSendEmail = "email:send"

	QueueCritical = "critical"
	QueueDefault  = "default"

	emailMaxRetry = 5
)

type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// TaskDistributor queues outbound mail for the worker process. It satisfies
// services.EmailDispatcher.
type TaskDistributor struct {
	client enqueuer
}

func NewTaskDistributor(opt asynq.RedisClientOpt) *TaskDistributor {
	return &TaskDistributor{client: asynq.NewClient(opt)}
}

func (d *TaskDistributor) DispatchEmail(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(SendEmailPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	task := asynq.NewTask(TaskSendEmail, payload,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(emailMaxRetry),
		asynq.Timeout(time.Minute),
	)
	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		metrics.EmailsSentTotal.WithLabelValues("queued", "error").Inc()
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}

	metrics.EmailsSentTotal.WithLabelValues("queued", "success").Inc()
	log.Debug().Str("task_id", info.ID).Str("queue", info.Queue).Int("max_retry", info.MaxRetry).Msg("Enqueued email task")
	return nil
}

func (d *TaskDistributor) Close() error {
	return d.client.Close()
}
