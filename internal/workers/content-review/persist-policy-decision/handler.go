// internal/workers/content-review/persist-policy-decision/handler.go
package persistpolicydecision

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"content-policy-workers/internal/common/database"
	apperrors "content-policy-workers/internal/common/errors"
	"content-policy-workers/internal/common/logger"
	"content-policy-workers/internal/common/metrics"
	"content-policy-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "persist-policy-decision"

var (
	ErrDecisionRequired    = errors.New("DECISION_REQUIRED")
	ErrDatabaseUnavailable = errors.New("DATABASE_CONNECTION_FAILED")
	ErrPersistFailed       = errors.New("DECISION_PERSIST_FAILED")
)

// Decisions are never updated in place. A retried job carrying the same
// decision ID is a no-op.
const insertDecisionQuery = `
	INSERT INTO policy_decisions (
		id, content_id, review_type, target_age_tier, status, score,
		scripture_accurate, lexicon_version, tier_version, decision, evaluated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO NOTHING`

const insertAuditQuery = `
	INSERT INTO audit_log (id, entity_type, entity_id, action, details, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

type Handler struct {
	config     *Config
	db         *sql.DB
	redis      *database.RedisClient
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
	now        func() time.Time
	newID      func() string
}

func NewHandler(config *Config, db *sql.DB, redis *database.RedisClient, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		redis:      redis,
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
		now:        time.Now,
		newID:      uuid.NewString,
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

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		code := h.errHandler.HandleJobError(context.Background(), client, job,
			apperrors.NewInvalidSubmissionError(fmt.Sprintf("parse input: %v", err)))
		metrics.ObserveJob(TaskType, code, time.Since(start))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := h.errHandler.HandleJobError(context.Background(), client, job, toStandardError(err, &input))
		metrics.ObserveJob(TaskType, code, time.Since(start))
		return
	}

	h.completeJob(client, job, output)
	metrics.ObserveJob(TaskType, "", time.Since(start))
}

func toStandardError(err error, input *Input) error {
	switch {
	case errors.Is(err, ErrDecisionRequired):
		return apperrors.NewInvalidSubmissionError(err.Error())
	case errors.Is(err, ErrDatabaseUnavailable):
		return apperrors.NewDatabaseConnectionFailedError(err)
	case errors.Is(err, ErrPersistFailed):
		id := ""
		if input.PolicyDecision != nil {
			id = input.PolicyDecision.ID
		}
		return apperrors.NewDecisionPersistFailedError(id, err)
	}
	return err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	d := input.PolicyDecision
	if d == nil || d.ID == "" || d.ContentID == "" {
		return nil, fmt.Errorf("%w: policyDecision with id and contentId is required", ErrDecisionRequired)
	}

	decisionJSON, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecisionRequired, err)
	}
	details, _ := json.Marshal(auditDetails{
		ContentID:  d.ContentID,
		ReviewType: d.ReviewType,
		Status:     d.Status,
		Score:      d.Score,
	})

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrDatabaseUnavailable, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, insertDecisionQuery,
		d.ID, d.ContentID, d.ReviewType, string(d.TargetAgeTier), string(d.Status), d.Score,
		d.ScriptureAccurate, d.LexiconVersion, d.TierTableVersion, decisionJSON, d.EvaluatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert decision: %v", ErrPersistFailed, err)
	}

	now := h.now().UTC()
	output := &Output{DecisionID: d.ID, Persisted: true, PersistedAt: now}

	if n, _ := res.RowsAffected(); n == 0 {
		h.logger.Info("decision already persisted", map[string]interface{}{
			"decisionId": d.ID,
		})
		output.Duplicate = true
		return output, nil
	}

	output.AuditID = h.newID()
	if _, err := tx.ExecContext(ctx, insertAuditQuery,
		output.AuditID, "policy_decision", d.ID, "decision_recorded", details, now,
	); err != nil {
		return nil, fmt.Errorf("%w: insert audit: %v", ErrPersistFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrPersistFailed, err)
	}

	h.cacheLatest(ctx, d, decisionJSON)

	h.logger.Info("decision persisted", map[string]interface{}{
		"decisionId": d.ID,
		"contentId":  d.ContentID,
		"status":     string(d.Status),
	})
	return output, nil
}

// cacheLatest is best effort. Postgres remains the source of truth.
func (h *Handler) cacheLatest(ctx context.Context, d *models.PolicyDecision, data []byte) {
	if err := h.redis.CacheLatestDecision(ctx, d.ContentID, d.ReviewType, data, h.config.CacheTTL); err != nil {
		h.logger.Warn("failed to cache latest decision", map[string]interface{}{
			"decisionId": d.ID,
			"key":        database.LatestDecisionKey(d.ContentID, d.ReviewType),
			"error":      err.Error(),
		})
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
