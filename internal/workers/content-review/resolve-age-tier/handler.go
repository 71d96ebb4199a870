// internal/workers/content-review/resolve-age-tier/handler.go
package resolveagetier

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
)

const (
	TaskType = "resolve-age-tier"

	dateLayout = "2006-01-02"
)

var (
	ErrUserIDRequired      = errors.New("USER_ID_REQUIRED")
	ErrUnknownAgeTier      = errors.New("UNKNOWN_AGE_TIER")
	ErrAgeTierUnresolved   = errors.New("AGE_TIER_UNRESOLVED")
	ErrProfileLookupFailed = errors.New("PROFILE_LOOKUP_FAILED")
)

const profileQuery = `SELECT user_id, COALESCE(birth_date::text, ''), COALESCE(age_tier, ''), COALESCE(tier_override, '') FROM submitter_profiles WHERE user_id = $1`

type Handler struct {
	config     *Config
	db         *sql.DB
	redis      *database.RedisClient
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
	now        func() time.Time
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
	case errors.Is(err, ErrUserIDRequired):
		return apperrors.NewInvalidSubmissionError("userId is required")
	case errors.Is(err, ErrUnknownAgeTier):
		return apperrors.NewUnknownAgeTierError(input.RequestedAgeTier)
	case errors.Is(err, ErrAgeTierUnresolved):
		return apperrors.NewAgeTierUnresolvedError(input.UserID)
	case errors.Is(err, ErrProfileLookupFailed):
		return apperrors.NewQueryExecutionFailedError("submitter_profile", err)
	}
	return err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RequestedAgeTier != "" {
		tier := models.AgeTier(input.RequestedAgeTier)
		if !tier.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAgeTier, input.RequestedAgeTier)
		}
		return &Output{TargetAgeTier: tier, TierSource: SourceRequested}, nil
	}
	if input.UserID == "" {
		return nil, ErrUserIDRequired
	}

	if val, found, err := h.redis.CachedTier(ctx, input.UserID); found {
		var cached Output
		if err := json.Unmarshal(val, &cached); err == nil && cached.TargetAgeTier.Valid() {
			return &Output{TargetAgeTier: cached.TargetAgeTier, TierSource: SourceCache}, nil
		}
	} else if err != nil {
		h.logger.Warn("tier cache unavailable, falling back to database", map[string]interface{}{
			"userId": input.UserID,
			"error":  err.Error(),
		})
	}

	var p Profile
	err := h.db.QueryRowContext(ctx, profileQuery, input.UserID).Scan(
		&p.UserID, &p.BirthDate, &p.AgeTier, &p.TierOverride,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAgeTierUnresolved
		}
		return nil, fmt.Errorf("%w: %v", ErrProfileLookupFailed, err)
	}

	output, ok := h.resolve(&p)
	if !ok {
		return nil, ErrAgeTierUnresolved
	}

	data, _ := json.Marshal(output)
	if err := h.redis.CacheTier(ctx, input.UserID, data, h.config.CacheTTL); err != nil {
		h.logger.Warn("failed to cache resolved tier", map[string]interface{}{
			"userId": input.UserID,
			"error":  err.Error(),
		})
	}
	return output, nil
}

// resolve prefers a moderator override, then the tier implied by the birth
// date, then the tier stored on the profile. Values outside the tier enum
// are skipped, never defaulted.
func (h *Handler) resolve(p *Profile) (*Output, bool) {
	if tier := models.AgeTier(p.TierOverride); tier.Valid() {
		return &Output{TargetAgeTier: tier, TierSource: SourceOverride}, true
	}
	if p.BirthDate != "" {
		birth, err := time.Parse(dateLayout, p.BirthDate)
		if err == nil {
			if tier, ok := models.TierForAge(ageOn(birth, h.now())); ok {
				return &Output{TargetAgeTier: tier, TierSource: SourceBirthDate}, true
			}
		} else {
			h.logger.Debug("unparseable birth date, skipping", map[string]interface{}{
				"userId":    p.UserID,
				"birthDate": p.BirthDate,
			})
		}
	}
	if tier := models.AgeTier(p.AgeTier); tier.Valid() {
		return &Output{TargetAgeTier: tier, TierSource: SourceProfile}, true
	}
	return nil, false
}

// ageOn returns the age in whole years on the given day.
func ageOn(birth, day time.Time) int {
	age := day.Year() - birth.Year()
	if day.Month() < birth.Month() || (day.Month() == birth.Month() && day.Day() < birth.Day()) {
		age--
	}
	return age
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
