package console

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/auditdeck/auditdeck/internal/api"
	"github.com/auditdeck/auditdeck/internal/constants"
	apperrors "github.com/auditdeck/auditdeck/internal/errors"

	"github.com/gorilla/websocket"
)

// FeedOptions configures a live feed subscription.
type FeedOptions struct {
	// AfterSequence is the resume cursor: only events with a sequence
	// strictly greater than this are delivered.
	AfterSequence int64
	// IncludeThinking requests reasoning trace events.
	IncludeThinking bool
	// IncludeToolCalls requests tool invocation events.
	IncludeToolCalls bool
}

// FeedHandler carries the callbacks invoked by the feed. All callbacks run on
// the feed's read goroutine; handlers must not block. Nil callbacks are
// skipped.
type FeedHandler struct {
	// OnEvent receives every durable event.
	OnEvent func(ev api.RawEvent)
	// OnThinkingStart marks the beginning of a reasoning burst.
	OnThinkingStart func(ev api.RawEvent)
	// OnThinkingToken delivers one incremental reasoning token.
	OnThinkingToken func(ev api.RawEvent)
	// OnThinkingEnd marks the end of a reasoning burst.
	OnThinkingEnd func(ev api.RawEvent)
	// OnDisconnect is invoked when the server closes the stream deliberately.
	OnDisconnect func(reason api.StreamDisconnectReason)
	// OnError is invoked once when the transport fails beyond recovery.
	OnError func(err error)
}

// LiveFeed is the push-based event subscription consumed by a Session.
type LiveFeed interface {
	Connect(ctx context.Context, taskID string, opts FeedOptions, handler FeedHandler) error
	Disconnect()
	IsConnected() bool
}

// WebSocketFeed is the production LiveFeed over gorilla/websocket. Transport
// loss triggers its own bounded exponential backoff reconnection, re-dialing
// with the original resume cursor; callers only observe a terminal OnError
// when attempts are exhausted.
type WebSocketFeed struct {
	endpoint string
	apiKey   string
	logger   *slog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	done      chan struct{}
	connected atomic.Bool
}

// NewWebSocketFeed creates a feed client for the given API endpoint.
func NewWebSocketFeed(endpoint, apiKey string, logger *slog.Logger) *WebSocketFeed {
	return &WebSocketFeed{
		endpoint: endpoint,
		apiKey:   apiKey,
		logger:   logger,
	}
}

// streamURL converts the HTTP API endpoint into the WebSocket stream URL for
// a task, carrying the resume cursor and inclusion flags as query parameters.
func (f *WebSocketFeed) streamURL(taskID string, opts FeedOptions) (string, error) {
	u, err := url.Parse(f.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid API endpoint: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported endpoint scheme: %s", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/tasks/" + url.PathEscape(taskID) + "/stream"

	q := url.Values{}
	q.Set("after_sequence", strconv.FormatInt(opts.AfterSequence, 10))
	q.Set("include_thinking", strconv.FormatBool(opts.IncludeThinking))
	q.Set("include_tool_calls", strconv.FormatBool(opts.IncludeToolCalls))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (f *WebSocketFeed) dial(ctx context.Context, wsURL string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: constants.FeedDialTimeout}

	header := http.Header{}
	if f.apiKey != "" {
		header.Set(constants.APIKeyHeader, f.apiKey)
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to event stream: %w", err)
	}
	return conn, nil
}

// Connect opens the subscription and starts the read loop. It returns once
// the connection is established; events are delivered asynchronously via the
// handler. Calling Connect while connected is an error: callers own the
// one-connection-per-epoch guarantee, this transport just enforces it.
func (f *WebSocketFeed) Connect(ctx context.Context, taskID string, opts FeedOptions, handler FeedHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn != nil {
		return apperrors.ErrFeed("feed already connected", nil)
	}

	wsURL, err := f.streamURL(taskID, opts)
	if err != nil {
		return err
	}

	conn, err := f.dial(ctx, wsURL)
	if err != nil {
		return apperrors.ErrFeed("event stream connection failed", err)
	}

	f.conn = conn
	f.done = make(chan struct{})
	f.connected.Store(true)

	f.logger.Debug("live feed connected",
		"task_id", taskID,
		"after_sequence", opts.AfterSequence)

	go f.readLoop(ctx, wsURL, conn, f.done, handler)

	return nil
}

// readLoop reads frames until the stream ends, reconnecting on transport loss
// with exponential backoff. A deliberate server disconnect or a Disconnect
// call ends the loop without error.
func (f *WebSocketFeed) readLoop(
	ctx context.Context,
	wsURL string,
	conn *websocket.Conn,
	done chan struct{},
	handler FeedHandler,
) {
	defer f.teardown()

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
				return
			default:
			}

			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}

			next, reconnectErr := f.reconnect(ctx, wsURL, done)
			if reconnectErr != nil {
				if handler.OnError != nil {
					handler.OnError(apperrors.ErrFeed("event stream lost", reconnectErr))
				}
				return
			}
			conn = next
			continue
		}

		if f.dispatch(conn, messageBytes, handler) {
			return
		}
	}
}

// dispatch routes one frame. Returns true when the stream should end.
func (f *WebSocketFeed) dispatch(conn *websocket.Conn, messageBytes []byte, handler FeedHandler) bool {
	var control api.StreamControlMessage
	if err := json.Unmarshal(messageBytes, &control); err == nil &&
		control.Type == api.StreamMessageTypeDisconnect {
		reason := api.StreamDisconnectReasonTaskCompleted
		if control.Reason != nil {
			reason = *control.Reason
		}
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "task completed"),
		)
		if handler.OnDisconnect != nil {
			handler.OnDisconnect(reason)
		}
		return true
	}

	var ev api.RawEvent
	if err := json.Unmarshal(messageBytes, &ev); err != nil {
		f.logger.Debug("skipping malformed feed frame", "error", err)
		return false
	}

	switch ev.EventType {
	case eventThinkingStart:
		if handler.OnThinkingStart != nil {
			handler.OnThinkingStart(ev)
		}
	case eventThinkingToken:
		if handler.OnThinkingToken != nil {
			handler.OnThinkingToken(ev)
		}
	case eventThinkingEnd:
		if handler.OnThinkingEnd != nil {
			handler.OnThinkingEnd(ev)
		}
	default:
		if handler.OnEvent != nil {
			handler.OnEvent(ev)
		}
	}
	return false
}

// reconnect re-dials the stream URL with exponential backoff. The resume
// cursor is unchanged: hydration already happened, the server replays only
// what the cursor excludes, so no re-hydration and no duplicates.
func (f *WebSocketFeed) reconnect(ctx context.Context, wsURL string, done chan struct{}) (*websocket.Conn, error) {
	delay := constants.FeedReconnectBaseDelay
	var lastErr error

	for attempt := 1; attempt <= constants.FeedReconnectMaxAttempts; attempt++ {
		select {
		case <-done:
			return nil, fmt.Errorf("feed closed during reconnect")
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		conn, err := f.dial(ctx, wsURL)
		if err == nil {
			f.mu.Lock()
			f.conn = conn
			f.mu.Unlock()
			f.connected.Store(true)
			f.logger.Debug("live feed reconnected", "attempt", attempt)
			return conn, nil
		}

		lastErr = err
		f.connected.Store(false)
		f.logger.Debug("feed reconnect attempt failed",
			"attempt", attempt, "error", err)
		delay *= 2
	}

	return nil, fmt.Errorf("reconnect attempts exhausted: %w", lastErr)
}

func (f *WebSocketFeed) teardown() {
	f.mu.Lock()
	if f.conn != nil {
		_ = f.conn.Close()
		f.conn = nil
	}
	f.mu.Unlock()
	f.connected.Store(false)
}

// Disconnect closes the subscription. Safe to call when not connected.
func (f *WebSocketFeed) Disconnect() {
	f.mu.Lock()
	done := f.done
	conn := f.conn
	f.done = nil
	f.conn = nil
	f.mu.Unlock()

	if done != nil {
		close(done)
	}
	if conn != nil {
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"),
		)
		_ = conn.Close()
	}
	f.connected.Store(false)
}

// IsConnected reports whether the transport currently holds an open
// connection.
func (f *WebSocketFeed) IsConnected() bool {
	return f.connected.Load()
}
