package camunda

import (
	"testing"

	"dinefine-workers/internal/common/config"
	"dinefine-workers/internal/common/logger"
	"dinefine-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrument_CallsHandlerAndTracksActiveJobs(t *testing.T) {
	const taskType = "instrument-test"
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: taskType}}

	var seen int64
	var activeDuring float64
	handler := instrument(taskType, func(_ worker.JobClient, j entities.Job) {
		seen = j.Key
		activeDuring = testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType))
	}, nil)

	handler(nil, job)

	assert.Equal(t, int64(42), seen)
	assert.Equal(t, float64(1), activeDuring)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
}

func TestStartWorker_Disabled(t *testing.T) {
	w := StartWorker(nil, "disabled-task", config.WorkerConfig{Enabled: false}, nil, nil, logger.NewTestLogger(t))
	assert.Nil(t, w)

	// Stop is safe on a disabled worker.
	w.Stop()
}
