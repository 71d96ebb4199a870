// internal/workers/content-review/index-policy-decision/handler.go
package indexpolicydecision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "content-policy-workers/internal/common/errors"
	"content-policy-workers/internal/common/logger"
	"content-policy-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const TaskType = "index-policy-decision"

var (
	ErrDecisionRequired              = errors.New("DECISION_REQUIRED")
	ErrElasticsearchConnectionFailed = errors.New("ELASTICSEARCH_CONNECTION_FAILED")
	ErrIndexFailed                   = errors.New("DECISION_INDEX_FAILED")
)

type Handler struct {
	config     *Config
	es         *elasticsearch.Client
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, es *elasticsearch.Client, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		es:         es,
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
		code := h.errHandler.HandleJobError(context.Background(), client, job, toStandardError(err, &input))
		metrics.ObserveJob(TaskType, code, time.Since(start))
		return
	}

	h.completeJob(client, job, output)
	metrics.ObserveJob(TaskType, "", time.Since(start))
}

func toStandardError(err error, input *Input) error {
	id := ""
	if input.PolicyDecision != nil {
		id = input.PolicyDecision.ID
	}
	switch {
	case errors.Is(err, ErrDecisionRequired):
		return apperrors.NewInvalidSubmissionError(err.Error())
	case errors.Is(err, ErrElasticsearchConnectionFailed):
		return apperrors.NewElasticsearchConnectionFailedError(err)
	case errors.Is(err, ErrIndexFailed):
		return apperrors.NewDecisionIndexFailedError(id, err)
	}
	return err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	d := input.PolicyDecision
	if d == nil || d.ID == "" {
		return nil, fmt.Errorf("%w: policyDecision with id is required", ErrDecisionRequired)
	}

	body, err := json.Marshal(NewDocument(d))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecisionRequired, err)
	}

	// The decision ID is the document ID, so a retried job overwrites
	// rather than duplicates.
	res, err := esapi.IndexRequest{
		Index:      h.config.Index,
		DocumentID: d.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, h.es)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrElasticsearchConnectionFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrIndexFailed, res.String())
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		h.logger.Warn("unreadable index response", map[string]interface{}{
			"decisionId": d.ID,
			"error":      err.Error(),
		})
	}

	h.logger.Info("decision indexed", map[string]interface{}{
		"decisionId": d.ID,
		"index":      h.config.Index,
		"result":     result.Result,
	})

	return &Output{
		DecisionID: d.ID,
		Indexed:    true,
		Index:      h.config.Index,
		Result:     result.Result,
	}, nil
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
