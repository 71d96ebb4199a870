// internal/workers/content-review/evaluate-content/handler.go
package evaluatecontent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "content-policy-workers/internal/common/errors"
	"content-policy-workers/internal/common/logger"
	"content-policy-workers/internal/common/metrics"
	"content-policy-workers/internal/common/observability"
	"content-policy-workers/internal/common/validation"
	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/engine"
	"content-policy-workers/internal/policy/tiers"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "evaluate-content"

var (
	ErrInvalidInput       = errors.New("INVALID_SUBMISSION")
	ErrUnknownAgeTier     = errors.New("UNKNOWN_AGE_TIER")
	ErrEvaluationTimeout  = errors.New("EVALUATION_TIMEOUT")
	ErrPolicyNotAvailable = errors.New("POLICY_LOAD_FAILED")
)

var schema = validation.MustCompile(inputSchema)

// Evaluator is satisfied by *engine.Engine.
type Evaluator interface {
	Evaluate(ctx context.Context, sub *models.ContentSubmission) (*models.PolicyDecision, error)
}

type Handler struct {
	config     *Config
	evaluator  Evaluator
	obs        *observability.Observability
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler builds the worker. obs may be nil.
func NewHandler(config *Config, evaluator Evaluator, obs *observability.Observability, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		evaluator:  evaluator,
		obs:        obs,
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := ParseInput(job.Variables)
	if err != nil {
		h.fail(client, job, err, nil, start)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.fail(client, job, err, input, start)
		return
	}

	h.completeJob(client, job, output)
	metrics.ObserveJob(TaskType, "", time.Since(start))
	h.record(ctx, string(input.TargetAgeTier), string(output.DecisionStatus), time.Since(start))
}

// ParseInput validates raw job variables against the input schema and
// decodes them.
func ParseInput(variables string) (*Input, error) {
	result, err := schema.Validate(variables)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	decision, err := h.evaluator.Evaluate(ctx, &input.ContentSubmission)
	if err != nil {
		var unknown *tiers.UnknownTierError
		switch {
		case errors.As(err, &unknown):
			return nil, fmt.Errorf("%w: %v", ErrUnknownAgeTier, err)
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			return nil, fmt.Errorf("%w: %v", ErrEvaluationTimeout, err)
		case errors.Is(err, engine.ErrNoPolicy):
			return nil, fmt.Errorf("%w: %v", ErrPolicyNotAvailable, err)
		}
		return nil, err
	}

	h.logger.Info("content evaluated", map[string]interface{}{
		"contentId":  decision.ContentID,
		"decisionId": decision.ID,
		"status":     string(decision.Status),
		"score":      decision.Score,
	})

	return &Output{
		DecisionID:        decision.ID,
		DecisionStatus:    decision.Status,
		PolicyScore:       decision.Score,
		ScriptureAccurate: decision.ScriptureAccurate,
		PolicyDecision:    decision,
	}, nil
}

func toStandardError(err error, input *Input) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidSubmissionError(err.Error())
	case errors.Is(err, ErrUnknownAgeTier):
		tier := ""
		if input != nil {
			tier = string(input.TargetAgeTier)
		}
		return apperrors.NewUnknownAgeTierError(tier)
	case errors.Is(err, ErrEvaluationTimeout):
		return apperrors.NewEvaluationTimeoutError(err)
	case errors.Is(err, ErrPolicyNotAvailable):
		return apperrors.NewPolicyLoadFailedError(err)
	}
	return err
}

func (h *Handler) fail(client worker.JobClient, job entities.Job, err error, input *Input, start time.Time) {
	code := h.errHandler.HandleJobError(context.Background(), client, job, toStandardError(err, input))
	metrics.ObserveJob(TaskType, code, time.Since(start))

	tier := ""
	if input != nil {
		tier = string(input.TargetAgeTier)
	}
	h.record(context.Background(), tier, "failed", time.Since(start))
}

func (h *Handler) record(ctx context.Context, tier, status string, d time.Duration) {
	if h.obs == nil {
		return
	}
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, d, status)
	if status != "failed" {
		h.obs.RecordEvaluation(ctx, tier, status)
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
