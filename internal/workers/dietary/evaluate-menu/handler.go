// internal/workers/dietary/evaluate-menu/handler.go
package evaluatemenu

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
)

const TaskType = "evaluate-menu"

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
		h.failJob(client, job, h.engine.StandardErrorFor(err, engine.ErrorContext{UserID: input.UserID}))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	diner, err := h.engine.ResolveDiner(ctx, input.UserID, input.Diner)
	if err != nil {
		return nil, err
	}

	output := &Output{
		MenuSafetySummary: h.engine.EvaluateMenu(input.Items, diner),
		RestrictedItems:   []string{},
	}
	for _, item := range input.Items {
		if h.engine.IsItemRestricted(item, diner) {
			output.RestrictedItems = append(output.RestrictedItems, item.Name)
		}
	}

	h.logger.Info("menu evaluated", map[string]interface{}{
		"totalItems": output.TotalItems,
		"safeItems":  output.SafeItemsCount,
	})
	return output, nil
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
