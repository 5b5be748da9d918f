package usecase

import (
	"context"
	"fmt"

	"TradeForge/internal/domain/models"
	applogger "TradeForge/pkg/logger"
	"TradeForge/pkg/queue"
)

// TrainJobType is the queue message type for asynchronous training runs.
const TrainJobType = "train.request"

// TrainJob runs queued training requests. Training a year of bars takes
// seconds to minutes, so the HTTP handler enqueues instead of blocking
// when async is requested.
type TrainJob struct {
	train *TrainUseCase
	l     *applogger.Logger
}

func NewTrainJob(train *TrainUseCase, l *applogger.Logger) *TrainJob {
	return &TrainJob{train: train, l: l}
}

func (j *TrainJob) Name() string { return "train" }

func (j *TrainJob) Type() string { return TrainJobType }

func (j *TrainJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[models.TrainRequest](payload)
	if err != nil {
		return fmt.Errorf("train job payload: %w", err)
	}
	res, err := j.train.Train(ctx, *req)
	if err != nil {
		return fmt.Errorf("train job %s/%s: %w", req.Symbol, req.Model, err)
	}
	if j.l != nil {
		j.l.Info("async training complete",
			applogger.String("symbol", res.Symbol),
			applogger.String("model", res.Model),
			applogger.Int("version", res.Version),
		)
	}
	return nil
}

var _ queue.Job = (*TrainJob)(nil)
