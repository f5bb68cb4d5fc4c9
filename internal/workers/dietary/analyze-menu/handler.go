// internal/workers/dietary/analyze-menu/handler.go
package analyzemenu

import (
	"context"
	"encoding/json"
	"fmt"

	"dinefine-workers/internal/common/errors"
	"dinefine-workers/internal/common/logger"
	"dinefine-workers/internal/common/metrics"
	"dinefine-workers/internal/common/validation"
	"dinefine-workers/internal/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "analyze-menu"

var schema = validation.MustCompile(inputSchema)

type Handler struct {
	config       *Config
	engine       *engine.Engine
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, eng *engine.Engine, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       eng,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if result := schema.ValidateJSON(job.Variables); !result.Valid {
		h.failJob(client, job, errors.NewInvalidInputError(result.Error()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, h.engine.StandardErrorFor(err, engine.ErrorContext{
			SourceKey: input.SourceKey,
			DinerID:   input.UserID,
			UserID:    input.UserID,
		}))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	attemptID := uuid.NewString()
	log := h.logger.WithFields(map[string]interface{}{
		"attemptId": attemptID,
		"sourceKey": input.SourceKey,
		"userId":    input.UserID,
	})

	diner, err := h.engine.ResolveDiner(ctx, input.UserID, input.Diner)
	if err != nil {
		return nil, err
	}

	analysis, err := h.engine.AnalyzeMenu(ctx, engine.MenuRequest{
		SourceKey:      input.SourceKey,
		Query:          input.Query,
		DinerID:        input.UserID,
		RestaurantName: input.RestaurantName,
	}, diner)
	if err != nil {
		log.Warn("menu analysis failed", map[string]interface{}{"error": err})
		return nil, err
	}

	log.Info("menu analyzed", map[string]interface{}{
		"servedFromCache": analysis.ServedFromCache,
		"decision":        string(analysis.Decision),
		"items":           len(analysis.Items),
		"safeItems":       analysis.Summary.SafeItemsCount,
	})

	return &Output{
		AttemptID:       attemptID,
		Items:           analysis.Items,
		ServedFromCache: analysis.ServedFromCache,
		CacheDecision:   string(analysis.Decision),
		MenuUpdatedAt:   analysis.UpdatedAt,
		Summary:         analysis.Summary,
		Annotations:     analysis.Annotations,
		QuotaRemaining:  analysis.QuotaRemaining,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *errors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
