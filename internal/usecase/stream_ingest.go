package usecase

import (
	"context"

	"TradeForge/internal/domain/models"
	drepo "TradeForge/internal/domain/repository"
	mid "TradeForge/internal/middleware"
	applogger "TradeForge/pkg/logger"
)

// StreamIngest owns the live ingestion loop: it connects the market
// stream, pushes closed bars through the realtime pipeline and handles
// reconnects.
type StreamIngest struct {
	stream   drepo.MarketStream
	ingestor *BarIngestor
	metrics  drepo.Metrics
	pipe     *mid.RealtimePipeline
	l        *applogger.Logger
}

func NewStreamIngest(stream drepo.MarketStream, ingestor *BarIngestor, metrics drepo.Metrics, pipe *mid.RealtimePipeline, l *applogger.Logger) *StreamIngest {
	return &StreamIngest{stream: stream, ingestor: ingestor, metrics: metrics, pipe: pipe, l: l}
}

// IsConnected reports whether the market stream is connected.
func (s *StreamIngest) IsConnected() bool {
	return s.stream.IsConnected()
}

func (s *StreamIngest) Start(ctx context.Context) error {
	if err := s.stream.Connect(ctx); err != nil {
		return err
	}
	if err := s.stream.Subscribe(ctx); err != nil {
		return err
	}
	if s.pipe != nil {
		s.pipe.Start(ctx)
	}
	barCh, errCh := s.stream.Read(ctx)
	go s.consume(ctx, barCh, errCh)
	return nil
}

func (s *StreamIngest) consume(ctx context.Context, barCh <-chan *models.Bar, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				s.metrics.RecordError("stream")
				if s.l != nil {
					s.l.Warn("stream read error, reconnecting", applogger.Error(err))
				}
				_ = s.stream.Reconnect(ctx)
			}
		case bar := <-barCh:
			if bar == nil {
				continue
			}
			if s.pipe != nil {
				_ = s.pipe.Process(ctx, bar)
			} else {
				_ = s.ingestor.Process(ctx, bar)
			}
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (s *StreamIngest) Shutdown(ctx context.Context) error {
	if s.pipe != nil {
		s.pipe.Stop()
	}
	return s.stream.Close()
}
