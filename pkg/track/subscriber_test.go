package track

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasbot/pkg/logger"
	"gasbot/pkg/models"
)

type fakeSnapshotter struct {
	snapshot *models.TrackingSnapshot
	err      error
}

func (f *fakeSnapshotter) TrackingDetails(ctx context.Context, orderID string) (*models.TrackingSnapshot, error) {
	return f.snapshot, f.err
}

func trackLogger() logger.ILogger {
	return logger.New("track-test", "error")
}

// wsURL turns an httptest server URL into the ws:// base the dialer needs.
func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

var upgrader = websocket.Upgrader{}

func TestStartReturnsSnapshotAndStreamsUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/track/ord-9/", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		msgs := []string{
			`{"event":"location_update","lat":-17.8292,"lng":31.0522,"timestamp":"2026-08-30T10:00:00Z"}`,
			`{"event":"error","message":"driver app offline"}`,
			`{"event":"heartbeat"}`,
			`{"event":"location_update","lat":-17.8300,"lng":31.0530,"timestamp":"2026-08-30T10:00:05Z"}`,
		}
		for _, m := range msgs {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	snap := &fakeSnapshotter{snapshot: &models.TrackingSnapshot{
		OrderID: "ord-9", DriverName: "Tendai Moyo", Lat: -17.82, Lng: 31.05,
	}}
	sub := New(wsURL(srv), "ord-9", snap, trackLogger())
	defer sub.Stop()

	snapshot, err := sub.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Tendai Moyo", snapshot.DriverName)

	first := recvUpdate(t, sub)
	assert.InDelta(t, -17.8292, first.Lat, 1e-9)
	assert.InDelta(t, 31.0522, first.Lng, 1e-9)

	// Error and unknown events never surface as location updates.
	second := recvUpdate(t, sub)
	assert.InDelta(t, -17.8300, second.Lat, 1e-9)
	assert.Equal(t, "2026-08-30T10:00:05Z", second.Timestamp)
}

func TestStartFailsWhenSnapshotUnavailable(t *testing.T) {
	snap := &fakeSnapshotter{err: errors.New("order not found")}
	sub := New("ws://unused", "ord-404", snap, trackLogger())

	_, err := sub.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateIdle, sub.State(), "no connection attempt without a snapshot")
}

func TestStopClosesUpdatesChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	sub := New(wsURL(srv), "ord-9", &fakeSnapshotter{snapshot: &models.TrackingSnapshot{}}, trackLogger())
	_, err := sub.Start(context.Background())
	require.NoError(t, err)

	sub.Stop()
	sub.Stop() // idempotent

	select {
	case _, open := <-sub.Updates():
		assert.False(t, open, "updates channel must be closed after Stop")
	case <-time.After(2 * time.Second):
		t.Fatal("updates channel not closed after Stop")
	}
	assert.Equal(t, StateClosed, sub.State())
}

func TestReconnectsAfterServerDropsConnection(t *testing.T) {
	var dials int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&dials, 1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		if n == 1 {
			// First connection dies right after one update.
			conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"event":"location_update","lat":1,"lng":1}`))
			conn.Close()
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"event":"location_update","lat":2,"lng":2}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	sub := New(wsURL(srv), "ord-9", &fakeSnapshotter{snapshot: &models.TrackingSnapshot{}}, trackLogger())
	defer sub.Stop()

	_, err := sub.Start(context.Background())
	require.NoError(t, err)

	first := recvUpdate(t, sub)
	assert.InDelta(t, 1.0, first.Lat, 1e-9)

	// The redial happens after the first backoff interval.
	second := recvUpdate(t, sub)
	assert.InDelta(t, 2.0, second.Lat, 1e-9)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&dials), int32(2))
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "reconnecting", StateReconnecting.String())
	assert.Equal(t, "closed", StateClosed.String())
}

func recvUpdate(t *testing.T, sub *Subscriber) models.LocationUpdate {
	t.Helper()
	select {
	case upd, open := <-sub.Updates():
		require.True(t, open, "updates channel closed unexpectedly")
		return upd
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a location update")
		return models.LocationUpdate{}
	}
}
