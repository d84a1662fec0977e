package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// StreamConfig configures the WebSocket quote stream.
type StreamConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns the default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// StreamSource subscribes to a WebSocket price stream and keeps the latest
// quote per feed. Latest never touches the network; it serves the cache the
// read loop maintains, so a purchase is never blocked on the feed provider.
type StreamSource struct {
	endpoint string
	config   StreamConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// latest holds the newest quote per feed
	latest   map[string]*Quote
	latestMu sync.RWMutex

	// feeds stores subscriptions for replay after reconnect
	feeds   map[string]struct{}
	feedsMu sync.Mutex

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// NewStreamSource connects to the endpoint and starts the read and ping
// loops. Feeds are added with Subscribe.
func NewStreamSource(ctx context.Context, endpoint string, config *StreamConfig) (*StreamSource, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}

	s := &StreamSource{
		endpoint: endpoint,
		config:   cfg,
		latest:   make(map[string]*Quote),
		feeds:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	s.wg.Add(1)
	go s.pingLoop()

	return s, nil
}

// connect establishes the WebSocket connection.
func (s *StreamSource) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

// Subscribe asks the stream for updates on the given feeds. Subscriptions
// are remembered and replayed after a reconnect.
func (s *StreamSource) Subscribe(feeds ...string) error {
	if s.closed.Load() {
		return fmt.Errorf("stream closed")
	}
	if len(feeds) == 0 {
		return nil
	}

	s.feedsMu.Lock()
	for _, f := range feeds {
		s.feeds[f] = struct{}{}
	}
	s.feedsMu.Unlock()

	return s.sendSubscribe(feeds)
}

// sendSubscribe writes one subscribe frame for the given feeds.
func (s *StreamSource) sendSubscribe(feeds []string) error {
	req := streamRequest{Type: "subscribe", Feeds: feeds}

	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("not connected")
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Latest returns the newest cached quote for the feed.
func (s *StreamSource) Latest(_ context.Context, feed string) (*Quote, error) {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()

	q, exists := s.latest[feed]
	if !exists {
		return nil, ErrNoQuote
	}

	quoteCopy := *q
	return &quoteCopy, nil
}

// Close shuts down the stream and its goroutines.
func (s *StreamSource) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	return nil
}

// readLoop reads quote frames and refreshes the cache, reconnecting with
// exponential backoff on connection errors.
func (s *StreamSource) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}

			if !s.reconnecting.Swap(true) {
				go s.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > s.config.MaxReconnectDelay {
				reconnectDelay = s.config.MaxReconnectDelay
			}

			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = s.config.ReconnectDelay

		s.handleMessage(message)
	}
}

// reconnect re-establishes the connection and replays subscriptions.
func (s *StreamSource) reconnect(delay time.Duration) {
	defer s.reconnecting.Store(false)

	if s.closed.Load() {
		return
	}

	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		// Reconnect failed, retried on the next read error
		return
	}

	s.feedsMu.Lock()
	feeds := make([]string, 0, len(s.feeds))
	for f := range s.feeds {
		feeds = append(feeds, f)
	}
	s.feedsMu.Unlock()

	if len(feeds) > 0 {
		_ = s.sendSubscribe(feeds)
	}
}

// handleMessage parses one frame and stores the quote if it is newer than
// the cached one. Out-of-order frames never roll the cache backwards.
func (s *StreamSource) handleMessage(message []byte) {
	var frame streamQuote
	if err := json.Unmarshal(message, &frame); err != nil {
		return
	}
	if frame.Type != "quote" || frame.Feed == "" {
		return
	}

	q := &Quote{
		Feed:        frame.Feed,
		Price:       frame.Price,
		PublishTime: frame.PublishTime,
	}

	s.latestMu.Lock()
	prev, exists := s.latest[q.Feed]
	if !exists || q.PublishTime >= prev.PublishTime {
		s.latest[q.Feed] = q
	}
	s.latestMu.Unlock()
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (s *StreamSource) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			s.connMu.Unlock()
		}
	}
}

// Compile-time interface check.
var _ Source = (*StreamSource)(nil)

// Stream wire frames.

type streamRequest struct {
	Type  string   `json:"type"`
	Feeds []string `json:"feeds"`
}

type streamQuote struct {
	Type        string `json:"type"`
	Feed        string `json:"feed"`
	Price       uint64 `json:"price"`
	PublishTime int64  `json:"publish_time"`
}
