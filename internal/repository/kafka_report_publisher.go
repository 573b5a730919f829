package repository

import (
	"context"
	"fmt"

	"StockCast/internal/domain/models"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
)

// KafkaReportPublisher publishes forecast reports as JSON keyed by symbol.
type KafkaReportPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

// NewKafkaReportPublisher creates a publisher writing to topic.
func NewKafkaReportPublisher(producer *pkgkafka.Producer, topic string, l *applogger.Logger) *KafkaReportPublisher {
	if l == nil {
		l = applogger.Nop()
	}
	return &KafkaReportPublisher{producer: producer, topic: topic, l: l}
}

func (p *KafkaReportPublisher) PublishReport(ctx context.Context, r *models.ForecastReport) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(r.Symbol), r); err != nil {
		p.l.Error("kafka publish report failed",
			applogger.String("topic", p.topic),
			applogger.String("symbol", r.Symbol),
			applogger.String("report_id", r.ID),
			applogger.Error(err),
		)
		return fmt.Errorf("publish report: %w", err)
	}
	p.l.Info("kafka report published",
		applogger.String("topic", p.topic),
		applogger.String("symbol", r.Symbol),
		applogger.String("report_id", r.ID),
	)
	return nil
}

func (p *KafkaReportPublisher) Close() error {
	return p.producer.Close()
}
