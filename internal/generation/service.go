package generation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/interfaces"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/logger"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/monitoring"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

const auditTimeout = 5 * time.Second

// Service decorates a generator with the input precondition, logging,
// metrics, tracing and the optional audit log
type Service struct {
	client   interfaces.NoteGenerator
	mode     Mode
	logger   *logger.Logger
	metrics  *monitoring.MetricsCollector
	tracing  *monitoring.TracingManager
	recorder interfaces.GenerationRecorder
	now      func() time.Time
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithMetrics records generation metrics on m
func WithMetrics(m *monitoring.MetricsCollector) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithTracing wraps each generation in a span
func WithTracing(t *monitoring.TracingManager) ServiceOption {
	return func(s *Service) { s.tracing = t }
}

// WithRecorder stores generation metadata through r
func WithRecorder(r interfaces.GenerationRecorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

// NewService creates a generation service around client
func NewService(client interfaces.NoteGenerator, mode Mode, log *logger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		client:  client,
		mode:    mode,
		logger:  log,
		tracing: monitoring.NewNoopTracingManager("generation"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns how this service reaches the model
func (s *Service) Mode() Mode {
	return s.mode
}

// Generate rejects blank transcripts before any network activity, then
// delegates to the underlying client
func (s *Service) Generate(ctx context.Context, transcript string) (*types.SOAPNote, error) {
	if strings.TrimSpace(transcript) == "" {
		err := types.NewInputError()
		s.record(ctx, len(transcript), 0, err)
		return nil, err
	}

	ctx, span := s.tracing.StartGenerationSpan(ctx, string(s.mode), len(transcript))
	defer span.End()

	start := s.now()
	note, err := s.client.Generate(ctx, transcript)
	duration := s.now().Sub(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(types.TypeOf(err)))
	} else {
		span.SetAttributes(attribute.Int("generation.medications", len(note.Plan.Medications)))
	}

	s.record(ctx, len(transcript), duration, err)
	return note, err
}

func (s *Service) record(ctx context.Context, transcriptLen int, duration time.Duration, err error) {
	outcome := outcomeOf(err)

	if s.metrics != nil {
		s.metrics.RecordGeneration(string(s.mode), outcome, duration)
	}

	if types.TypeOf(err) == types.ErrorTypeInput {
		s.logger.WithContext(ctx).WithField("mode", s.mode).Debug("Rejected blank transcript")
		return
	}
	s.logger.Generation(ctx, string(s.mode), transcriptLen, duration, err)

	if s.recorder == nil {
		return
	}

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	event := &interfaces.GenerationEvent{
		ID:            uuid.New().String(),
		RequestID:     logger.RequestIDFromContext(ctx),
		Mode:          string(s.mode),
		TranscriptLen: transcriptLen,
		Outcome:       outcome,
		Duration:      duration,
		CreatedAt:     s.now().UTC(),
	}
	if recErr := s.recorder.Record(auditCtx, event); recErr != nil {
		s.logger.WithContext(ctx).WithError(recErr).Error("Failed to record generation event")
		if s.metrics != nil {
			s.metrics.RecordAuditFailure()
		}
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return monitoring.OutcomeSuccess
	}
	if t := types.TypeOf(err); t != "" {
		return string(t)
	}
	return "unknown"
}
