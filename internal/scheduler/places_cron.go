package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/places"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
	"github.com/studyfindr/studyfindr-api/pkg/metrics"
)

// Runner is implemented by places.Ingestor.
type Runner interface {
	Run(ctx context.Context) (places.Result, error)
}

// RunIngest executes one ingestion with a deadline and records the outcome.
func RunIngest(ctx context.Context, runner Runner, timeout time.Duration) (places.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := runner.Run(ctx)
	metrics.IngestedPlaces.WithLabelValues("inserted").Add(float64(res.Inserted))
	metrics.IngestedPlaces.WithLabelValues("updated").Add(float64(res.Updated))
	if err != nil {
		metrics.IngestRuns.WithLabelValues("error").Inc()
		logger.Log.WithError(err).Error("Places ingestion failed")
		return res, err
	}
	metrics.IngestRuns.WithLabelValues("ok").Inc()
	return res, nil
}

// StartPlacesCron schedules ingestion on spec (standard cron syntax or a
// descriptor such as @daily). Overlapping runs are skipped. The caller stops
// the returned scheduler on shutdown.
func StartPlacesCron(spec string, runner Runner, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(spec, func() {
		res, err := RunIngest(context.Background(), runner, timeout)
		if err != nil {
			return
		}
		logger.Log.WithFields(logrus.Fields{
			"inserted": res.Inserted,
			"updated":  res.Updated,
		}).Info("Scheduled places ingestion done")
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Log.WithField("schedule", spec).Info("Places ingestion scheduled")
	return c, nil
}
