package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-builder/internal/llm"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
	"resume-builder/resume/schema"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 30 * time.Second

// ErrGeneration is matched by every *GenerationError.
var ErrGeneration = errors.New("generation failed")

// GenerationError reports a model call that failed, timed out, or produced output
// that could not be brought into the ResumeContent shape.
type GenerationError struct {
	Reason     string
	Violations []schema.Violation
	Err        error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return "generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// Service turns a generation request into validated resume content with one model call.
type Service struct {
	LLM     llm.Completer
	Timeout time.Duration
	now     func() time.Time
}

func NewService(client llm.Completer, timeout time.Duration) *Service {
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{LLM: client, Timeout: timeout, now: time.Now}
}

// Generate builds the prompt, calls the model once under Timeout and classifies the reply.
func (s *Service) Generate(ctx context.Context, req model.GenerationRequest) (model.ResumeContent, Outcome, error) {
	if _, err := schema.Encode(schema.GenerationRequest, req); err != nil {
		return model.ResumeContent{}, "", err
	}
	metrics.IncGenerationStarted()
	started := s.now()

	raw, err := s.complete(ctx, BuildPrompt(req))
	if err != nil {
		reason := "model call failed"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "model call timed out"
		}
		return s.fail(req, started, &GenerationError{Reason: reason, Err: err})
	}

	res := Classify(raw)
	if res.Outcome == OutcomeUnrepairable {
		return s.fail(req, started, &GenerationError{Reason: res.Reason, Violations: res.Violations})
	}
	if res.Outcome == OutcomeRepaired {
		metrics.IncGenerationRepaired()
	}
	elapsed := s.now().Sub(started)
	metrics.ObserveGenerationDurationMs(float64(elapsed.Milliseconds()))
	telemetry.Info("generation.complete", map[string]any{
		"outcome":     string(res.Outcome),
		"repairs":     res.Repairs,
		"duration_ms": elapsed.Milliseconds(),
		"level":       string(req.ExperienceLevel),
	})
	return resumes.SanitizeContent(res.Content), res.Outcome, nil
}

// complete runs the model call under the deadline and returns when the deadline
// passes even if the provider ignores cancellation.
func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		text, err := s.LLM.Complete(ctx, prompt)
		done <- reply{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Service) fail(req model.GenerationRequest, started time.Time, gerr *GenerationError) (model.ResumeContent, Outcome, error) {
	elapsed := s.now().Sub(started)
	metrics.IncGenerationFailed()
	metrics.ObserveGenerationDurationMs(float64(elapsed.Milliseconds()))
	fields := map[string]any{
		"outcome":     string(OutcomeUnrepairable),
		"reason":      gerr.Reason,
		"duration_ms": elapsed.Milliseconds(),
		"level":       string(req.ExperienceLevel),
	}
	if gerr.Err != nil {
		fields["err"] = gerr.Err
	}
	if len(gerr.Violations) > 0 {
		fields["violations"] = len(gerr.Violations)
	}
	telemetry.Warn("generation.complete", fields)
	return model.ResumeContent{}, OutcomeUnrepairable, gerr
}
