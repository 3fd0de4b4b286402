package nats_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdocs/internal/domain"
	"taxdocs/internal/events/nats"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
	drained bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.err
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := nats.NewPublisherWithConn(conn, "taxdocs")
	ev := domain.Event{
		Type:       domain.EventDocumentTransitioned,
		DocumentID: uuid.New(),
		OccurredAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Data:       map[string]any{"from": "UPLOADED", "to": "PROCESSING"},
	}
	require.NoError(t, p.Publish(context.Background(), ev))
	assert.Equal(t, "taxdocs.document.transitioned", conn.subject)

	var got domain.Event
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, ev.DocumentID, got.DocumentID)
	assert.Equal(t, "PROCESSING", got.Data["to"])

	require.NoError(t, p.Close())
	assert.True(t, conn.drained)
}

func TestPublisher_Errors(t *testing.T) {
	conn := &fakeConn{err: natsgo.ErrConnectionClosed}
	p := nats.NewPublisherWithConn(conn, "")
	err := p.Publish(context.Background(), domain.Event{Type: domain.EventValidationFailed})
	assert.True(t, errors.Is(err, natsgo.ErrConnectionClosed))
	assert.Equal(t, "validation.failed", conn.subject)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, domain.Event{}), context.Canceled)
}
