package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/auditdeck/auditdeck/internal/api"
	"github.com/auditdeck/auditdeck/internal/console"
	"github.com/auditdeck/auditdeck/internal/constants"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

const (
	serverReadTimeout     = 15 * time.Second
	serverWriteTimeout    = 0 // streaming responses; no write deadline
	serverIdleTimeout     = 120 * time.Second
	serverShutdownTimeout = 5 * time.Second
)

// Server replays one scenario. Live events are published on a schedule to all
// connected stream subscribers; the REST surface reflects everything
// published so far, so a client that hydrates mid-replay sees a consistent
// history page.
type Server struct {
	scenario *Scenario
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu        sync.Mutex
	status    constants.TaskStatus
	delivered []api.RawEvent
	subs      map[chan streamFrame]struct{}
	replaying bool
}

// streamFrame is one unit on a subscriber channel: an event or the final
// disconnect signal.
type streamFrame struct {
	event      *api.RawEvent
	disconnect bool
}

// NewServer creates a replay server for the scenario.
func NewServer(scenario *Scenario, logger *slog.Logger) *Server {
	return &Server{
		scenario: scenario,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		status: scenario.Task.Status,
		subs:   make(map[chan streamFrame]struct{}),
	}
}

// Router creates the chi router serving the orchestrator REST surface.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "component": "replayd"})
	})

	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Get("/", s.handleListTasks)
		r.Get("/{taskID}", s.handleGetTask)
		r.Get("/{taskID}/events", s.handleListEvents)
		r.Get("/{taskID}/agents", s.handleGetAgents)
		r.Get("/{taskID}/findings", s.handleListFindings)
		r.Get("/{taskID}/stream", s.handleStream)
	})

	return r
}

// StartReplay begins publishing the scenario's live events on their recorded
// schedule. Runs at most once; once all events are published the task is
// marked completed and subscribers receive a disconnect frame.
func (s *Server) StartReplay(ctx context.Context) {
	s.mu.Lock()
	if s.replaying {
		s.mu.Unlock()
		return
	}
	s.replaying = true
	s.mu.Unlock()

	go func() {
		for _, timed := range s.scenario.Live {
			delay := time.Duration(timed.DelayMs) * time.Millisecond
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}

			ev := timed.Event
			s.mu.Lock()
			// Streaming-only events are pushed to subscribers but never
			// persisted; a later hydration must not see them.
			if !console.IsStreamingOnly(ev.EventType) {
				s.delivered = append(s.delivered, ev)
			}
			for ch := range s.subs {
				select {
				case ch <- streamFrame{event: &ev}:
				default:
					// Slow subscriber; it will catch up from the history page
					// on its next hydration.
				}
			}
			s.mu.Unlock()
		}

		s.mu.Lock()
		s.status = constants.TaskCompleted
		for ch := range s.subs {
			select {
			case ch <- streamFrame{disconnect: true}:
			default:
			}
		}
		s.mu.Unlock()

		s.logger.Info("scenario replay finished",
			"task_id", s.scenario.Task.TaskID,
			"live_events", len(s.scenario.Live))
	}()
}

func (s *Server) handleListTasks(w http.ResponseWriter, _ *http.Request) {
	task := s.currentTask()
	writeJSON(w, http.StatusOK, []api.TaskSummary{{
		TaskID:    task.TaskID,
		Name:      task.Name,
		Target:    task.Target,
		Status:    task.Status,
		CreatedAt: task.CreatedAt,
	}})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	if !s.checkTaskID(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.currentTask())
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if !s.checkTaskID(w, r) {
		return
	}

	limit := constants.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	s.mu.Lock()
	events := make([]api.RawEvent, 0, len(s.scenario.History)+len(s.delivered))
	events = append(events, s.scenario.History...)
	events = append(events, s.delivered...)
	s.mu.Unlock()

	if len(events) > limit {
		events = events[len(events)-limit:]
	}

	writeJSON(w, http.StatusOK, api.EventsResponse{
		TaskID: s.scenario.Task.TaskID,
		Events: events,
	})
}

func (s *Server) handleGetAgents(w http.ResponseWriter, r *http.Request) {
	if !s.checkTaskID(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, api.AgentTreeResponse{
		TaskID: s.scenario.Task.TaskID,
		Agents: s.scenario.Agents,
	})
}

func (s *Server) handleListFindings(w http.ResponseWriter, r *http.Request) {
	if !s.checkTaskID(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, api.FindingsResponse{
		TaskID:   s.scenario.Task.TaskID,
		Findings: s.scenario.Findings,
	})
}

// handleStream upgrades to WebSocket and streams events after the client's
// resume cursor: first the catch-up backlog, then live frames as published.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if !s.checkTaskID(w, r) {
		return
	}

	afterSequence := int64(0)
	if raw := r.URL.Query().Get("after_sequence"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			afterSequence = parsed
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	// Subscribe before snapshotting the backlog so nothing published between
	// the two is missed.
	ch := make(chan streamFrame, 64)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	backlog := make([]api.RawEvent, 0)
	for _, ev := range s.scenario.History {
		if ev.Sequence > afterSequence {
			backlog = append(backlog, ev)
		}
	}
	for _, ev := range s.delivered {
		if ev.Sequence > afterSequence {
			backlog = append(backlog, ev)
		}
	}
	terminal := constants.IsTerminalTaskStatus(s.status)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}()

	s.logger.Debug("stream subscriber connected",
		"after_sequence", afterSequence,
		"backlog", len(backlog))

	lastSent := afterSequence
	for _, ev := range backlog {
		if err = conn.WriteJSON(ev); err != nil {
			return
		}
		lastSent = ev.Sequence
	}

	if terminal {
		s.sendDisconnect(conn)
		return
	}

	// Reader goroutine: detect client close.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-clientGone:
			return
		case frame := <-ch:
			if frame.disconnect {
				s.sendDisconnect(conn)
				return
			}
			// Streaming-only events have no sequence and bypass the cursor.
			if console.IsStreamingOnly(frame.event.EventType) {
				if err = conn.WriteJSON(frame.event); err != nil {
					return
				}
				continue
			}
			// The subscriber channel may replay an event already sent in the
			// backlog snapshot; the cursor keeps delivery exactly-once.
			if frame.event.Sequence <= lastSent {
				continue
			}
			if err = conn.WriteJSON(frame.event); err != nil {
				return
			}
			lastSent = frame.event.Sequence
		}
	}
}

func (s *Server) sendDisconnect(conn *websocket.Conn) {
	reason := api.StreamDisconnectReasonTaskCompleted
	_ = conn.WriteJSON(api.StreamControlMessage{
		Type:   api.StreamMessageTypeDisconnect,
		Reason: &reason,
	})
	_ = conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "task completed"),
	)
}

func (s *Server) currentTask() api.TaskResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := s.scenario.Task
	task.Status = s.status
	return task
}

func (s *Server) checkTaskID(w http.ResponseWriter, r *http.Request) bool {
	taskID := chi.URLParam(r, "taskID")
	if taskID != s.scenario.Task.TaskID {
		writeJSON(w, http.StatusNotFound, api.ErrorResponse{
			Error:   "task not found",
			Details: fmt.Sprintf("no task with id %s", taskID),
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(constants.ContentTypeHeader, "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Run starts the replay server and blocks until shutdown.
func Run(ctx context.Context, scenario *Scenario, port int, log *slog.Logger) error {
	server := NewServer(scenario, log)
	server.StartReplay(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.Router(),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("starting replay server",
			"port", port,
			"task_id", scenario.Task.TaskID,
			"history_events", len(scenario.History),
			"live_events", len(scenario.Live))

		if serveErr := srv.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("failed to start server: %w", serveErr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case runErr := <-serverErrors:
		return runErr
	case <-quit:
		log.Info("shutting down replay server...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down replay server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return fmt.Errorf("server shutdown error: %w", shutdownErr)
	}

	log.Info("replay server shutdown complete")
	return nil
}
