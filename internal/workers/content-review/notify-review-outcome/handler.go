// internal/workers/content-review/notify-review-outcome/handler.go
package notifyreviewoutcome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"content-policy-workers/internal/common/aws"
	"content-policy-workers/internal/common/database"
	apperrors "content-policy-workers/internal/common/errors"
	"content-policy-workers/internal/common/logger"
	"content-policy-workers/internal/common/metrics"
	"content-policy-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-review-outcome"

	channelEmail      = "email"
	channelModeration = "moderation"
)

var (
	ErrDecisionRequired = errors.New("DECISION_REQUIRED")
	ErrEmailFailed      = errors.New("EMAIL_SEND_FAILED")
	ErrModerationFailed = errors.New("MODERATION_PUBLISH_FAILED")
)

type Handler struct {
	config     *Config
	ses        *aws.SESClient
	sns        *aws.SNSClient
	redis      *database.RedisClient
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler builds the notifier. ses and sns may be nil when the matching
// channel is disabled. Without redis every retry delivers again.
func NewHandler(config *Config, ses *aws.SESClient, sns *aws.SNSClient, redis *database.RedisClient, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		ses:        ses,
		sns:        sns,
		redis:      redis,
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
		code := h.errHandler.HandleJobError(context.Background(), client, job, toStandardError(err))
		metrics.ObserveJob(TaskType, code, time.Since(start))
		return
	}

	h.completeJob(client, job, output)
	metrics.ObserveJob(TaskType, "", time.Since(start))
}

func toStandardError(err error) error {
	switch {
	case errors.Is(err, ErrDecisionRequired):
		return apperrors.NewInvalidSubmissionError(err.Error())
	case errors.Is(err, ErrEmailFailed):
		return apperrors.NewNotificationSendFailedError("email", err)
	case errors.Is(err, ErrModerationFailed):
		return apperrors.NewNotificationSendFailedError("moderation", err)
	}
	return err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	d := input.PolicyDecision
	if d == nil || d.ID == "" {
		return nil, fmt.Errorf("%w: policyDecision with id is required", ErrDecisionRequired)
	}

	output := &Output{}

	// Moderators hear about a rejection before the submitter does.
	if d.Status == models.StatusRejected && h.config.ModerationEnabled && h.sns != nil {
		id, err := h.deliverOnce(ctx, d.ID, channelModeration, func() (string, error) {
			return h.publishModeration(ctx, d)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModerationFailed, err)
		}
		output.ModerationPublished = true
		output.ModerationMessageID = id
	}

	if d.Status != models.StatusApproved && h.config.EmailEnabled && h.ses != nil {
		switch {
		case input.SubmitterEmail == "":
			h.logger.Debug("no submitter email, skipping", map[string]interface{}{"decisionId": d.ID})
		case !isValidEmail(input.SubmitterEmail):
			h.logger.Warn("invalid submitter email, skipping", map[string]interface{}{
				"decisionId": d.ID,
				"email":      input.SubmitterEmail,
			})
		default:
			id, err := h.deliverOnce(ctx, d.ID, channelEmail, func() (string, error) {
				return h.ses.SendText(ctx, h.config.FromEmail, input.SubmitterEmail,
					buildSubject(d), buildBody(input.SubmitterName, d))
			})
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrEmailFailed, err)
			}
			output.EmailSent = true
			output.EmailMessageID = id
		}
	}

	h.logger.Info("review outcome notified", map[string]interface{}{
		"decisionId":          d.ID,
		"status":              string(d.Status),
		"emailSent":           output.EmailSent,
		"moderationPublished": output.ModerationPublished,
	})
	return output, nil
}

// deliverOnce sends on channel unless an earlier attempt for the same
// decision already did, in which case the recorded message ID is returned.
// Redis errors never block delivery.
func (h *Handler) deliverOnce(ctx context.Context, decisionID, channel string, send func() (string, error)) (string, error) {
	if h.redis != nil {
		id, found, err := h.redis.SentNotification(ctx, decisionID, channel)
		switch {
		case err != nil:
			h.logger.Warn("delivery record unavailable", map[string]interface{}{
				"decisionId": decisionID,
				"channel":    channel,
				"error":      err.Error(),
			})
		case found:
			h.logger.Info("already delivered, skipping", map[string]interface{}{
				"decisionId": decisionID,
				"channel":    channel,
				"messageId":  id,
			})
			return id, nil
		}
	}

	id, err := send()
	if err != nil {
		return "", err
	}

	if h.redis != nil {
		if err := h.redis.RecordNotification(ctx, decisionID, channel, id, h.config.DeliveryTTL); err != nil {
			h.logger.Warn("failed to record delivery", map[string]interface{}{
				"decisionId": decisionID,
				"channel":    channel,
				"error":      err.Error(),
			})
		}
	}
	return id, nil
}

func (h *Handler) publishModeration(ctx context.Context, d *models.PolicyDecision) (string, error) {
	flagged := d.FlaggedIssues
	if flagged == nil {
		flagged = []string{}
	}
	msg, err := json.Marshal(moderationEvent{
		DecisionID:    d.ID,
		ContentID:     d.ContentID,
		ReviewType:    d.ReviewType,
		TargetAgeTier: d.TargetAgeTier,
		Score:         d.Score,
		Summary:       d.Summary,
		FlaggedIssues: flagged,
	})
	if err != nil {
		return "", err
	}

	attrs := map[string]string{
		"status":        string(d.Status),
		"targetAgeTier": string(d.TargetAgeTier),
	}
	if d.ReviewType != "" {
		attrs["reviewType"] = d.ReviewType
	}
	return h.sns.PublishJSON(ctx, h.config.TopicARN, "Content rejected: "+d.ContentID, string(msg), attrs)
}

func buildSubject(d *models.PolicyDecision) string {
	if d.Status == models.StatusRejected {
		return "Your submission was not accepted"
	}
	return "Your submission needs a few changes"
}

func buildBody(name string, d *models.PolicyDecision) string {
	var b strings.Builder
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "%s\n", d.Summary)

	if len(d.FlaggedIssues) > 0 {
		b.WriteString("\nWhat we found:\n")
		for _, issue := range d.FlaggedIssues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
	}
	if len(d.Recommendations) > 0 {
		b.WriteString("\nSuggested changes:\n")
		for _, r := range d.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}

	fmt.Fprintf(&b, "\nReference: %s (score %d/100)\n", d.ID, d.Score)
	return b.String()
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	return strings.Contains(parts[1], ".")
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
