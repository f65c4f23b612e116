package track

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"gasbot/pkg/api"
	"gasbot/pkg/logger"
	"gasbot/pkg/models"
)

// Connection states of one tracking subscription.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Snapshotter provides the REST snapshot fetched before the socket opens.
type Snapshotter interface {
	TrackingDetails(ctx context.Context, orderID string) (*models.TrackingSnapshot, error)
}

// Subscriber streams one order's driver location. A dropped connection
// is redialed with capped exponential backoff instead of going silent.
type Subscriber struct {
	orderID string
	wsBase  string
	snap    Snapshotter
	log     logger.ILogger
	dialer  *websocket.Dialer

	updates chan models.LocationUpdate
	state   atomic.Int32

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
}

func New(wsBaseURL, orderID string, snap Snapshotter, log logger.ILogger) *Subscriber {
	return &Subscriber{
		orderID: orderID,
		wsBase:  strings.TrimRight(wsBaseURL, "/"),
		snap:    snap,
		log:     log,
		dialer:  websocket.DefaultDialer,
		updates: make(chan models.LocationUpdate, 16),
	}
}

func (s *Subscriber) url() string {
	return s.wsBase + api.WSTrackPath(s.orderID)
}

// Updates delivers location_update events. The channel is closed when
// the subscription stops; slow consumers see last-write-wins, not a
// growing backlog.
func (s *Subscriber) Updates() <-chan models.LocationUpdate {
	return s.updates
}

func (s *Subscriber) State() State {
	return State(s.state.Load())
}

func (s *Subscriber) setState(st State) {
	s.state.Store(int32(st))
}

// Start fetches the tracking snapshot and then maintains the socket in a
// background goroutine until Stop or ctx cancellation.
func (s *Subscriber) Start(ctx context.Context) (*models.TrackingSnapshot, error) {
	snapshot, err := s.snap.TrackingDetails(ctx, s.orderID)
	if err != nil {
		return nil, fmt.Errorf("tracking snapshot for order %s: %w", s.orderID, err)
	}

	s.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.cancel = cancel
		go s.run(runCtx)
	})
	return snapshot, nil
}

// Stop closes the socket and the updates channel. Safe to call twice.
func (s *Subscriber) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

func (s *Subscriber) run(ctx context.Context) {
	defer func() {
		s.setState(StateClosed)
		close(s.updates)
	}()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0

	for {
		s.setState(StateConnecting)
		conn, resp, err := s.dialer.DialContext(ctx, s.url(), nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warning("tracking dial failed",
				logger.String("order_id", s.orderID), logger.Error(err))
			if !s.waitBackoff(ctx, bo) {
				return
			}
			continue
		}

		bo.Reset()
		s.setState(StateOpen)
		s.log.Info("tracking stream open", logger.String("order_id", s.orderID))

		err = s.readLoop(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		s.log.Warning("tracking stream dropped",
			logger.String("order_id", s.orderID), logger.Error(err))
		if !s.waitBackoff(ctx, bo) {
			return
		}
	}
}

func (s *Subscriber) waitBackoff(ctx context.Context, bo backoff.BackOff) bool {
	s.setState(StateReconnecting)
	select {
	case <-ctx.Done():
		return false
	case <-time.After(bo.NextBackOff()):
		return true
	}
}

func (s *Subscriber) readLoop(ctx context.Context, conn *websocket.Conn) error {
	unblock := make(chan struct{})
	defer close(unblock)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-unblock:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var upd models.LocationUpdate
		if err := json.Unmarshal(data, &upd); err != nil {
			s.log.Warning("unparseable tracking message", logger.Error(err))
			continue
		}

		switch upd.Event {
		case models.TrackingEventLocationUpdate:
			s.publish(upd)
		case models.TrackingEventError:
			// Logged only; the stream itself is still healthy.
			s.log.Error("tracking stream error event",
				logger.String("order_id", s.orderID), logger.String("message", upd.Message))
		default:
			s.log.Debug("ignoring tracking event", logger.String("event", upd.Event))
		}
	}
}

// publish applies last-write-wins: if the consumer is behind, the stale
// buffered update is dropped in favor of the newest one.
func (s *Subscriber) publish(upd models.LocationUpdate) {
	for {
		select {
		case s.updates <- upd:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
