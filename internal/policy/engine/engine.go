// Package engine orchestrates one policy evaluation: it resolves the tier,
// fans the submission out to every checker and assembles the decision. It
// performs no I/O.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"content-policy-workers/internal/common/logger"
	"content-policy-workers/internal/common/metrics"
	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/checkers"
	"content-policy-workers/internal/policy/feedback"
	"content-policy-workers/internal/policy/scoring"
	"content-policy-workers/internal/policy/textutil"
)

// FullDeduction is applied for malformed input and for a failed checker.
const FullDeduction = scoring.BaselineScore

var ErrNoPolicy = errors.New("POLICY_NOT_LOADED")

type Engine struct {
	source   Source
	checkers []checkers.Checker
	logger   logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

type Option func(*Engine)

// WithCheckers replaces the default checker registry.
func WithCheckers(cs ...checkers.Checker) Option {
	return func(e *Engine) {
		e.checkers = cs
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

func New(source Source, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		checkers: checkers.Default(),
		logger:   log.WithFields(map[string]interface{}{"component": "policy-engine"}),
		tracer:   otel.Tracer("content-policy-workers/policy"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns a decision for sub. Malformed input yields a rejected
// decision, not an error; an unknown tier returns *tiers.UnknownTierError and
// a cancelled context returns ctx.Err().
func (e *Engine) Evaluate(ctx context.Context, sub *models.ContentSubmission) (*models.PolicyDecision, error) {
	start := e.now()

	policy := e.source.Current()
	if policy == nil {
		return nil, ErrNoPolicy
	}

	ctx, span := e.tracer.Start(ctx, "policy.evaluate", trace.WithAttributes(
		attribute.String("lexicon.version", policy.Lexicon.Version()),
		attribute.String("tiers.version", policy.Tiers.Version()),
	))
	defer span.End()

	if reason := validateSubmission(sub); reason != "" {
		finding := models.CheckFinding{
			Category:   models.CategoryInputValidation,
			Severity:   models.SeverityCritical,
			ScoreDelta: -FullDeduction,
			Messages: []models.FindingMessage{{
				Text:      "Invalid submission: " + reason,
				Violation: true,
				Rule:      "input/invalid",
			}},
		}
		d := e.decide(policy, sub, []models.CheckFinding{finding}, start)
		d.Status = models.StatusRejected

		e.logger.Warn("rejected malformed submission", map[string]interface{}{
			"reason":     reason,
			"decisionId": d.ID,
		})
		e.record(span, d)
		return d, nil
	}

	span.SetAttributes(attribute.String("tier", string(sub.TargetAgeTier)))

	tier, err := policy.Tiers.Lookup(sub.TargetAgeTier)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	text := sub.Text
	if strings.TrimSpace(text) == "" && sub.Content != nil {
		text = textutil.Flatten(sub.Content)
	}

	cc := &checkers.Context{
		Submission:    sub,
		Tier:          tier,
		Deductions:    policy.Tiers.Deductions(),
		Lexicon:       policy.Lexicon,
		PositiveFloor: policy.PositiveFloor,
	}

	findings, err := e.runCheckers(ctx, textutil.NewDocument(text), cc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	d := e.decide(policy, sub, findings, start)
	e.record(span, d)
	return d, nil
}

// runCheckers runs one goroutine per checker and joins them. Results keep
// registry order regardless of completion order.
func (e *Engine) runCheckers(ctx context.Context, doc *textutil.Document, cc *checkers.Context) ([]models.CheckFinding, error) {
	results := make([]models.CheckFinding, len(e.checkers))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range e.checkers {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.runChecker(c, doc, cc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) runChecker(c checkers.Checker, doc *textutil.Document, cc *checkers.Context) (f models.CheckFinding) {
	defer func() {
		if r := recover(); r != nil {
			f = e.checkerFailure(c.Category(), fmt.Errorf("panic: %v", r))
		}
	}()

	f, err := c.Check(doc, cc)
	if err != nil {
		return e.checkerFailure(c.Category(), err)
	}
	f.Category = c.Category()
	if f.ScoreDelta > 0 {
		f.ScoreDelta = 0
	}
	return f
}

func (e *Engine) checkerFailure(category models.Category, err error) models.CheckFinding {
	e.logger.Error("checker failed", map[string]interface{}{
		"category": string(category),
		"error":    err.Error(),
	})
	metrics.PolicyCheckerFailures.WithLabelValues(string(category)).Inc()

	return models.CheckFinding{
		Category:   category,
		Severity:   models.SeverityCritical,
		ScoreDelta: -FullDeduction,
		Messages: []models.FindingMessage{{
			Text:      fmt.Sprintf("%s check failed: %v", feedback.CategoryLabel(category), err),
			Violation: true,
			Rule:      "checker/failure",
		}},
	}
}

func (e *Engine) decide(policy *Policy, sub *models.ContentSubmission, findings []models.CheckFinding, start time.Time) *models.PolicyDecision {
	kept := make([]models.CheckFinding, 0, len(findings))
	for _, f := range findings {
		if !f.Empty() {
			kept = append(kept, f)
		}
	}

	score := scoring.Aggregate(kept)
	status := policy.Thresholds.Classify(score)
	fb := feedback.Synthesize(kept, score, status)

	d := &models.PolicyDecision{
		ID:                uuid.NewString(),
		Status:            status,
		Score:             score,
		Summary:           fb.Summary,
		FlaggedIssues:     make([]string, 0),
		Warnings:          make([]string, 0),
		Feedback:          fb.Feedback,
		Recommendations:   fb.Recommendations,
		Findings:          kept,
		ScriptureAccurate: true,
		LexiconVersion:    policy.Lexicon.Version(),
		TierTableVersion:  policy.Tiers.Version(),
		EvaluatedAt:       start.UTC(),
	}
	if sub != nil {
		d.ContentID = sub.ContentID
		d.ReviewType = sub.ReviewType
		d.TargetAgeTier = sub.TargetAgeTier
	}

	for _, f := range kept {
		if f.Category == models.CategoryScriptureAccuracy && f.HasViolations() {
			d.ScriptureAccurate = false
		}
		for _, m := range f.Messages {
			if m.Violation {
				d.FlaggedIssues = append(d.FlaggedIssues, m.Text)
			} else {
				d.Warnings = append(d.Warnings, m.Text)
			}
		}
	}

	d.ProcessingDurationMs = e.now().Sub(start).Milliseconds()
	return d
}

func (e *Engine) record(span trace.Span, d *models.PolicyDecision) {
	duration := time.Duration(d.ProcessingDurationMs) * time.Millisecond
	metrics.ObserveEvaluation(string(d.Status), d.Score, duration)

	span.SetAttributes(
		attribute.String("decision.id", d.ID),
		attribute.String("decision.status", string(d.Status)),
		attribute.Int("decision.score", d.Score),
		attribute.Int("decision.findings", len(d.Findings)),
	)

	e.logger.Info("policy evaluation completed", map[string]interface{}{
		"decisionId":     d.ID,
		"contentId":      d.ContentID,
		"tier":           string(d.TargetAgeTier),
		"status":         string(d.Status),
		"score":          d.Score,
		"lexiconVersion": d.LexiconVersion,
		"durationMs":     d.ProcessingDurationMs,
	})
}

// validateSubmission returns why sub cannot be evaluated, or "".
func validateSubmission(sub *models.ContentSubmission) string {
	if sub == nil {
		return "submission is required"
	}
	if strings.TrimSpace(string(sub.TargetAgeTier)) == "" {
		return "targetAgeTier is required"
	}
	if !sub.ContentType.Valid() {
		return fmt.Sprintf("unknown contentType %q", sub.ContentType)
	}
	// Incomplete references are scored by the scripture checker. Only a
	// reference carrying nothing at all is malformed.
	for i, ref := range sub.ScriptureReferences {
		if strings.TrimSpace(ref.Book) == "" && strings.TrimSpace(ref.Translation) == "" &&
			strings.TrimSpace(ref.Verses) == "" && ref.Chapter == 0 {
			return fmt.Sprintf("scriptureReferences[%d] is empty", i)
		}
	}
	return ""
}
