package events

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	published []*nats.Msg
	pubErr    error
	flushErr  error
	flushes   int
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.published = append(f.published, m)
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error {
	f.flushes++
	return f.flushErr
}

func TestPublish_SetsDedupHeader(t *testing.T) {
	conn := &fakeConn{}
	p := newPublisher(conn, "circuit.tournament.closed", nil)

	err := p.Publish(context.Background(), "tournament-7-closed", []byte(`{"tournament_id":7}`))
	require.NoError(t, err)

	require.Len(t, conn.published, 1)
	msg := conn.published[0]
	assert.Equal(t, "circuit.tournament.closed", msg.Subject)
	assert.Equal(t, "tournament-7-closed", msg.Header.Get(nats.MsgIdHdr))
	assert.Equal(t, "application/json", msg.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"tournament_id":7}`, string(msg.Data))
	assert.Equal(t, 1, conn.flushes)
}

func TestPublish_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("publish", func(t *testing.T) {
		conn := &fakeConn{pubErr: boom}
		err := newPublisher(conn, "s", nil).Publish(context.Background(), "id", nil)
		require.ErrorIs(t, err, boom)
		assert.Zero(t, conn.flushes)
	})

	t.Run("flush", func(t *testing.T) {
		conn := &fakeConn{flushErr: boom}
		err := newPublisher(conn, "s", nil).Publish(context.Background(), "id", nil)
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "flush s")
	})
}

func TestConnect_RequiresURL(t *testing.T) {
	_, err := Connect("", "subject", nil)
	assert.Error(t, err)
}
