package repository

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	pkgkafka "StockCast/pkg/kafka"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaReportPublisher(t *testing.T) {
	w := &recordingWriter{}
	pub := NewKafkaReportPublisher(pkgkafka.NewProducerWithWriter(w), "stockcast.forecasts", nil)

	r2 := 0.5
	report := &models.ForecastReport{ID: "run-1", Symbol: "GS", MSE: 1.25, R2: &r2}
	require.NoError(t, pub.PublishReport(context.Background(), report))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "stockcast.forecasts", msg.Topic)
	assert.Equal(t, []byte("GS"), msg.Key)

	var got models.ForecastReport
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "run-1", got.ID)
	require.NotNil(t, got.R2)
	assert.InDelta(t, 0.5, *got.R2, 1e-12)
	require.NoError(t, pub.Close())
}

func TestBarsQuery(t *testing.T) {
	q, args := barsQuery("db.bars", "GS", day(1), day(31))
	assert.Contains(t, q, "date >= ?")
	assert.Contains(t, q, "date <= ?")
	assert.Len(t, args, 3)

	q, args = barsQuery("db.bars", "GS", time.Time{}, time.Time{})
	assert.NotContains(t, q, "date >=")
	assert.Equal(t, []any{"GS"}, args)
	assert.True(t, strings.HasSuffix(q, "ORDER BY date ASC"))
}
