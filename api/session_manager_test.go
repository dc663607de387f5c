package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionManagerCreateAndGet(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()
	mgr := NewSessionManager(b)

	sess, err := mgr.CreateSession(SessionCreateRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, err := mgr.Get(sess.ID)
	require.NoError(t, err)
	require.Same(t, sess, got)
}

func TestSessionManagerGetMissingReturnsError(t *testing.T) {
	mgr := NewSessionManager(NewBroadcaster())
	_, err := mgr.Get("does-not-exist")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManagerDestroy(t *testing.T) {
	mgr := NewSessionManager(NewBroadcaster())
	sess, err := mgr.CreateSession(SessionCreateRequest{})
	require.NoError(t, err)

	mgr.Destroy(sess.ID)
	_, err = mgr.Get(sess.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.Zero(t, mgr.Count())
}

func TestSessionManagerList(t *testing.T) {
	mgr := NewSessionManager(NewBroadcaster())
	_, err := mgr.CreateSession(SessionCreateRequest{})
	require.NoError(t, err)
	_, err = mgr.CreateSession(SessionCreateRequest{SystemMode: true})
	require.NoError(t, err)

	require.Len(t, mgr.List(), 2)
}
