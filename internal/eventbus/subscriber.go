package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"charger-alert-service/internal/model"
	"charger-alert-service/internal/service"
)

// ReportHandler runs the pipeline for one delivered report.
type ReportHandler interface {
	ProcessReport(ctx context.Context, report *model.UsageReport) (service.Outcome, error)
}

// Subscriber consumes created usage reports from NATS. Delivery is
// at-least-once; the pipeline's guard handles redeliveries.
type Subscriber struct {
	conn *nats.Conn
	sub  *nats.Subscription
	log  zerolog.Logger
}

func NewSubscriber(natsURL string, log zerolog.Logger) (*Subscriber, error) {
	conn, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	log.Info().Str("nats_url", natsURL).Msg("connected to NATS")
	return &Subscriber{
		conn: conn,
		log:  log,
	}, nil
}

// Start subscribes on the reports subject with a queue group so concurrent
// instances split the stream.
func (s *Subscriber) Start(subject, queue string, handler ReportHandler) error {
	sub, err := s.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		var report model.UsageReport
		if err := json.Unmarshal(msg.Data, &report); err != nil {
			s.log.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping malformed report event")
			return
		}

		outcome, err := handler.ProcessReport(context.Background(), &report)
		if err != nil {
			s.log.Error().Err(err).Str("report_id", report.ID).Msg("pipeline audit write failed")
			return
		}
		s.log.Info().
			Str("report_id", report.ID).
			Str("outcome", string(outcome)).
			Msg("report processed from event bus")
	})
	if err != nil {
		return err
	}

	s.sub = sub
	s.log.Info().Str("subject", subject).Str("queue", queue).Msg("subscribed to report events")
	return nil
}

func (s *Subscriber) Close() {
	if s.sub != nil {
		_ = s.sub.Unsubscribe()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}
