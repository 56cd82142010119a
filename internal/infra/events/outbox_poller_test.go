package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"jewelrystore/internal/domain/model"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type outboxRepoMock struct{ mock.Mock }

func (m *outboxRepoMock) Create(ctx context.Context, ev model.OutboxEvent) error {
	panic("not used in OutboxPoller tests")
}

func (m *outboxRepoMock) ListUnprocessed(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	evs, _ := args.Get(0).([]model.OutboxEvent)
	return evs, args.Error(1)
}

func (m *outboxRepoMock) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type writerMock struct {
	msgs   []kafka.Message
	failAt int
	err    error
}

func (w *writerMock) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil && len(w.msgs) == w.failAt {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *writerMock) Close() error { return nil }

func newEvent(id int64, orderID string, typ model.OrderEventType) model.OutboxEvent {
	return model.OutboxEvent{
		ID:          id,
		EventID:     "ev-" + orderID,
		AggregateID: orderID,
		EventType:   typ,
		Payload:     json.RawMessage(`{"order_id":` + orderID + `}`),
	}
}

func newTestPoller(r *outboxRepoMock, w MessageWriter) (*OutboxPoller, time.Time) {
	p := NewOutboxPoller(r, w, zap.NewNop(), time.Millisecond)
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }
	return p, fixed
}

func TestProcessOnce_PublishesAndMarks(t *testing.T) {
	r := &outboxRepoMock{}
	w := &writerMock{}
	p, now := newTestPoller(r, w)

	r.On("ListUnprocessed", mock.Anything, 100).Return([]model.OutboxEvent{
		newEvent(1, "10", model.OrderEventCreated),
		newEvent(2, "10", model.OrderEventPaid),
	}, nil).Once()
	r.On("MarkProcessed", mock.Anything, int64(1), now).Return(nil).Once()
	r.On("MarkProcessed", mock.Anything, int64(2), now).Return(nil).Once()

	sent := p.ProcessOnce(context.Background())

	assert.Equal(t, 2, sent)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "10", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"order_id":10}`, string(w.msgs[0].Value))
	assert.Equal(t, "event_type", w.msgs[1].Headers[0].Key)
	assert.Equal(t, "order.paid", string(w.msgs[1].Headers[0].Value))
	r.AssertExpectations(t)
}

func TestProcessOnce_StopsOnPublishFailure(t *testing.T) {
	r := &outboxRepoMock{}
	w := &writerMock{failAt: 1, err: errors.New("broker down")}
	p, now := newTestPoller(r, w)

	r.On("ListUnprocessed", mock.Anything, 100).Return([]model.OutboxEvent{
		newEvent(1, "10", model.OrderEventCreated),
		newEvent(2, "10", model.OrderEventPaid),
		newEvent(3, "11", model.OrderEventCreated),
	}, nil).Once()
	r.On("MarkProcessed", mock.Anything, int64(1), now).Return(nil).Once()

	sent := p.ProcessOnce(context.Background())

	assert.Equal(t, 1, sent)
	assert.Len(t, w.msgs, 1)
	r.AssertNotCalled(t, "MarkProcessed", mock.Anything, int64(2), mock.Anything)
	r.AssertExpectations(t)
}

func TestProcessOnce_FetchError(t *testing.T) {
	r := &outboxRepoMock{}
	w := &writerMock{}
	p, _ := newTestPoller(r, w)

	r.On("ListUnprocessed", mock.Anything, 100).Return(nil, errors.New("db down")).Once()

	assert.Equal(t, 0, p.ProcessOnce(context.Background()))
	assert.Empty(t, w.msgs)
}

func TestRun_StopsOnCancel(t *testing.T) {
	r := &outboxRepoMock{}
	w := &writerMock{}
	p, _ := newTestPoller(r, w)

	r.On("ListUnprocessed", mock.Anything, 100).Return([]model.OutboxEvent{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
