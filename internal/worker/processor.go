package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"codequest/internal/metrics"
	"codequest/internal/services"
)

// TaskProcessor runs the asynq server that delivers queued mail.
type TaskProcessor struct {
	server *asynq.Server
	sender services.EmailService
}

func NewTaskProcessor(opt asynq.RedisClientOpt, sender services.EmailService) *TaskProcessor {
	server := asynq.NewServer(opt, asynq.Config{
		Queues: map[string]int{
			QueueCritical: 10,
			QueueDefault:  5,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("type", task.Type()).Msg("Process task failed")
		}),
		Logger: NewLogger(),
	})
	return &TaskProcessor{server: server, sender: sender}
}

func (p *TaskProcessor) HandleSendEmail(ctx context.Context, task *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("email task without recipient: %w", asynq.SkipRetry)
	}

	if err := p.sender.SendEmail(payload.To, payload.Subject, payload.Body); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("worker", "error").Inc()
		return err
	}

	metrics.EmailsSentTotal.WithLabelValues("worker", "success").Inc()
	log.Info().Str("to", payload.To).Str("subject", payload.Subject).Msg("Email sent")
	return nil
}

// Start begins processing in the background; call Shutdown to stop.
func (p *TaskProcessor) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSendEmail, p.HandleSendEmail)
	return p.server.Start(mux)
}

func (p *TaskProcessor) Shutdown() {
	p.server.Shutdown()
}
