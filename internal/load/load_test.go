package load

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-genes/internal/gene"
)

// fakeSession records calls and fails inserts for the configured ids.
type fakeSession struct {
	failOn    map[string]error
	commitErr error

	inserted []string
	commits  int
	closes   int
}

func (s *fakeSession) Insert(_ context.Context, r gene.Record) error {
	if err, ok := s.failOn[r.ID]; ok {
		return err
	}
	s.inserted = append(s.inserted, r.ID)
	return nil
}

func (s *fakeSession) Commit() error {
	s.commits++
	return s.commitErr
}

func (s *fakeSession) Close() error {
	s.closes++
	return nil
}

type fakeConnector struct {
	sess     *fakeSession
	err      error
	connects int
}

func (c *fakeConnector) Connect(context.Context) (Session, error) {
	c.connects++
	if c.err != nil {
		return nil, c.err
	}
	return c.sess, nil
}

func records(ids ...string) []gene.Record {
	out := make([]gene.Record, len(ids))
	for i, id := range ids {
		out[i] = gene.Record{ID: id, DisplayName: "G" + id}
	}
	return out
}

func TestLoadAllRows(t *testing.T) {
	sess := &fakeSession{}
	l := NewLoader(&fakeConnector{sess: sess})

	res, err := l.Load(context.Background(), records("A", "B", "C"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, res.Inserted)
	assert.Empty(t, res.Failed)
	assert.True(t, res.Committed)
	assert.Equal(t, 3, res.Attempted())
	assert.Equal(t, 1, sess.commits)
	assert.Equal(t, 1, sess.closes)
}

func TestLoadContinuesAfterRowFailure(t *testing.T) {
	dup := errors.New("duplicate key value violates unique constraint")
	sess := &fakeSession{failOn: map[string]error{"B": dup}}
	l := NewLoader(&fakeConnector{sess: sess})

	res, err := l.Load(context.Background(), records("A", "B", "C"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, res.Inserted)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "B", res.Failed[0].GeneID)
	assert.ErrorIs(t, res.Failed[0], dup)
	assert.Equal(t, []string{"A", "C"}, sess.inserted)
	assert.Equal(t, 1, sess.commits)
	assert.Equal(t, 1, sess.closes)
}

func TestLoadRejectsMissingID(t *testing.T) {
	sess := &fakeSession{}
	l := NewLoader(&fakeConnector{sess: sess})

	res, err := l.Load(context.Background(), records("A", "", "C"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, res.Inserted)
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Failed[0], gene.ErrMissingID)
}

func TestLoadConnectFailure(t *testing.T) {
	conn := &fakeConnector{err: errors.New("connection refused")}
	l := NewLoader(conn)

	res, err := l.Load(context.Background(), records("A"))
	require.ErrorIs(t, err, ErrConnect)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, res)
	assert.Equal(t, 1, conn.connects)
}

func TestLoadCommitFailureStillCloses(t *testing.T) {
	sess := &fakeSession{commitErr: errors.New("server closed the connection")}
	l := NewLoader(&fakeConnector{sess: sess})

	res, err := l.Load(context.Background(), records("A"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit")
	require.NotNil(t, res)
	assert.False(t, res.Committed)
	assert.Equal(t, 1, sess.closes)
}

func TestLoadEmpty(t *testing.T) {
	sess := &fakeSession{}
	l := NewLoader(&fakeConnector{sess: sess})

	res, err := l.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Attempted())
	assert.True(t, res.Committed)
	assert.Equal(t, 1, sess.closes)
}
