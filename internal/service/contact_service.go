package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/pkg/jobs"
)

type mailSender interface {
	Send(to, subject, body string) error
}

// ContactService relays contact-form messages to the configured recipient.
// Delivery happens through the worker queue so a slow SMTP relay never
// blocks the request.
type ContactService struct {
	mailer    mailSender
	recipient string
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
}

type contactPayload struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// NewContactService constructs the service. Call Start before use.
func NewContactService(mailer mailSender, recipient string, cfg jobs.QueueConfig, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ContactService{mailer: mailer, recipient: recipient, validator: validate, logger: logger}
	cfg.Logger = logger
	svc.queue = jobs.NewQueue("contact", svc.handle, cfg)
	return svc
}

// Start begins background delivery.
func (s *ContactService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ContactService) Stop() {
	s.queue.Stop()
}

// ContactRequest describes the contact-form payload.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=3"`
	Message string `json:"message" validate:"required,min=10"`
}

// Submit validates the form and queues the message for delivery.
func (s *ContactService) Submit(ctx context.Context, req ContactRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err)
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: "contact-email",
		Payload: contactPayload{
			Name:    req.Name,
			Email:   req.Email,
			Subject: req.Subject,
			Message: req.Message,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		// Queue refusal (shutdown in progress) falls back to synchronous
		// delivery rather than dropping the message.
		s.logger.Warn("contact queue unavailable, sending inline", zap.Error(err))
		return s.deliver(job.Payload.(contactPayload))
	}
	return nil
}

func (s *ContactService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(contactPayload)
	if !ok {
		return fmt.Errorf("unexpected contact payload type %T", job.Payload)
	}
	return s.deliver(payload)
}

func (s *ContactService) deliver(payload contactPayload) error {
	subject := fmt.Sprintf("[Contact] %s", payload.Subject)
	body := fmt.Sprintf("From: %s <%s>\n\n%s", payload.Name, payload.Email, payload.Message)
	if err := s.mailer.Send(s.recipient, subject, body); err != nil {
		return fmt.Errorf("deliver contact message: %w", err)
	}
	return nil
}
