package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	msgs []*nats.Msg
	err  error
}

func (c *recordingConn) PublishMsg(m *nats.Msg) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, m)
	return nil
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &recordingConn{}
	p := newNATSPublisher(conn, "hazard.report")
	fixed := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	err := p.Publish(context.Background(), KindVerified, ReportVerified{ReportID: "r1", UserID: "u1", UserReputation: 0.12})
	require.NoError(t, err)
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "hazard.report.verified", msg.Subject)

	var env struct {
		ID         string         `json:"id"`
		Kind       string         `json:"kind"`
		OccurredAt time.Time      `json:"occurred_at"`
		Payload    ReportVerified `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, KindVerified, env.Kind)
	assert.True(t, fixed.Equal(env.OccurredAt))
	assert.Equal(t, ReportVerified{ReportID: "r1", UserID: "u1", UserReputation: 0.12}, env.Payload)
}

func TestNATSPublisher_Error(t *testing.T) {
	p := newNATSPublisher(&recordingConn{err: errors.New("no conn")}, "x")
	err := p.Publish(context.Background(), KindAnalyzed, ReportAnalyzed{ReportID: "r1"})
	assert.ErrorContains(t, err, "no conn")
}

func TestNATSPublisher_Subject(t *testing.T) {
	assert.Equal(t, "analyzed", newNATSPublisher(nil, "").Subject(KindAnalyzed))
	assert.Equal(t, "a.b.analyzed", newNATSPublisher(nil, "a.b").Subject(KindAnalyzed))
}

func TestConnectNATS_Unreachable(t *testing.T) {
	_, err := ConnectNATS("nats://127.0.0.1:1", "x")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), KindAnalyzed, nil))
	assert.NoError(t, p.Close())
}
