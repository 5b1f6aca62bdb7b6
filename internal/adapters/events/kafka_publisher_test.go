package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	"walking-route-service/internal/domain"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSerializeToMessage(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := domain.SearchEvent{
		SessionID: "sess-1",
		Address:   "Plaza Mayor",
		Outcome:   domain.OutcomeRouteUnavailable,
		Location:  &domain.Coordinate{Latitude: 40.415, Longitude: -3.707},
		Warning:   "route unavailable",
		At:        at,
	}

	msg, err := serializeToMessage(ev)
	require.NoError(t, err)

	assert.Equal(t, []byte("sess-1"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "outcome", msg.Headers[0].Key)
	assert.Equal(t, "route_unavailable", string(msg.Headers[0].Value))
	assert.Equal(t, "2026-03-01T12:00:00Z", string(msg.Headers[1].Value))

	var decoded domain.SearchEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev, decoded)
}

func TestKafkaPublisherUnreachableBroker(t *testing.T) {
	p := NewKafkaPublisher([]string{"127.0.0.1:1"}, "route-searches", zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Publish(ctx, domain.SearchEvent{SessionID: "sess-1", Outcome: domain.OutcomeFound})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish search event")
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.NoError(t, p.Close())
}

func TestKafkaPublisherLogsFailedDelivery(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := NewKafkaPublisher([]string{"127.0.0.1:1"}, "route-searches", zap.New(core))

	msgs := []kafkago.Message{{Key: []byte("a")}, {Key: []byte("b")}}
	p.writer.Completion(msgs, nil)
	assert.Zero(t, logs.Len())

	p.writer.Completion(msgs, errors.New("broker down"))
	entries := logs.FilterMessage("search event delivery failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["messages"])
	assert.Equal(t, "broker down", entries[0].ContextMap()["error"])
}
