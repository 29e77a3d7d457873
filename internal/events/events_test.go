package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var seen []string
	d.Subscribe(EventComplaintEscalated, func(context.Context, Event) error {
		seen = append(seen, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventComplaintEscalated, func(context.Context, Event) error {
		seen = append(seen, "second")
		return nil
	})
	d.Subscribe(EventComplaintCreated, func(context.Context, Event) error {
		seen = append(seen, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventComplaintEscalated, ComplaintID: "c1"}))
	assert.Equal(t, []string{"first", "second"}, seen)
}

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaProducerDisabledIsNoop(t *testing.T) {
	p := NewKafkaProducer(nil, "complaint-events", nil)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Forward(context.Background(), Event{Type: EventComplaintCreated}))
	assert.NoError(t, p.Close())
}

func TestKafkaProducerKeysByComplaint(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaProducer{writer: w, topic: "complaint-events", logger: NewKafkaProducer(nil, "", nil).logger}
	ev := Event{
		ID:          "e1",
		Type:        EventComplaintStatusChanged,
		ComplaintID: "c-42",
		Actor:       Actor{ID: "u1", Role: domain.RoleOfficial},
		Timestamp:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Payload:     ComplaintStatusChangedPayload{OldStatus: domain.StatusAssigned, NewStatus: domain.StatusInProgress},
	}
	require.NoError(t, p.Forward(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "c-42", string(w.msgs[0].Key))
	assert.Equal(t, "complaint_status_changed", string(w.msgs[0].Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "in_progress", decoded["payload"].(map[string]any)["new_status"])

	w.err = errors.New("broker down")
	assert.Error(t, p.Forward(context.Background(), ev))
}
