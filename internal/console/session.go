package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/auditdeck/auditdeck/internal/api"
	"github.com/auditdeck/auditdeck/internal/constants"

	"golang.org/x/sync/errgroup"
)

// Backend is the orchestrator surface a session consumes: the task snapshot,
// the flat agent records, the findings list, and the historical event page.
type Backend interface {
	HistorySource
	GetTask(ctx context.Context, taskID string) (*api.TaskResponse, error)
	GetAgentTree(ctx context.Context, taskID string) ([]api.AgentRecord, error)
	ListFindings(ctx context.Context, taskID string) ([]api.Finding, error)
}

// ConnState is the connection state of the current task epoch. Transitions
// only move forward within an epoch; a task switch starts a new epoch at
// StateHydrating.
type ConnState int

const (
	// StateIdle means no task is attached
	StateIdle ConnState = iota
	// StateHydrating means the historical fold is in progress
	StateHydrating
	// StateConnecting means the live feed dial is in progress
	StateConnecting
	// StateConnected means live events are flowing
	StateConnected
	// StateDisconnected means the epoch will receive no further live events
	StateDisconnected
)

// String implements fmt.Stringer.
func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHydrating:
		return "hydrating"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	}
	return fmt.Sprintf("ConnState(%d)", int(s))
}

// reasoningAccumulator folds incremental reasoning tokens into one streaming
// entry. Scoped to the task epoch: a switch discards it wholesale.
type reasoningAccumulator struct {
	entryID   string
	buffer    strings.Builder
	agentName string
}

// SessionOptions tunes a session.
type SessionOptions struct {
	// HistoryLimit bounds the hydration fetch. Zero means the default.
	HistoryLimit int
	// TreeDebounce is the minimum interval between agent tree reloads.
	// Zero means the default.
	TreeDebounce time.Duration
	// IncludeThinking requests reasoning traces from the live feed.
	IncludeThinking bool
	// IncludeToolCalls requests tool invocations from the live feed.
	IncludeToolCalls bool
}

// Session reconciles the three weakly-ordered sources for one task at a time:
// the REST snapshot, the historical event page, and the live feed. Switching
// tasks synchronously disconnects, resets every piece of epoch state, and
// re-hydrates, so a late event from the previous task can never leak into the
// new view.
type Session struct {
	backend Backend
	feed    LiveFeed
	logger  *slog.Logger
	opts    SessionOptions

	log      *Log
	hydrator *Hydrator

	mu               sync.Mutex
	ctx              context.Context
	epoch            int
	taskID           string
	state            ConnState
	task             *api.TaskResponse
	tree             []*AgentNode
	findings         []api.Finding
	watermark        int64
	connectAttempted bool
	acc              *reasoningAccumulator
	lastTreeReload   time.Time
	treeTimer        *time.Timer
}

// NewSession creates a session over the given backend and feed.
func NewSession(backend Backend, feed LiveFeed, logger *slog.Logger, opts SessionOptions) *Session {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = constants.DefaultHistoryLimit
	}
	if opts.TreeDebounce <= 0 {
		opts.TreeDebounce = constants.TreeReloadDebounce
	}

	log := NewLog()
	return &Session{
		backend:  backend,
		feed:     feed,
		logger:   logger,
		opts:     opts,
		log:      log,
		hydrator: NewHydrator(backend, log, opts.HistoryLimit, logger),
		ctx:      context.Background(),
		state:    StateIdle,
	}
}

// SwitchTask attaches the session to a task. Any previous epoch is torn down
// first: the live connection is closed and the log, tree, watermark, and both
// latches are reset before the new hydration begins. It then fetches the
// snapshot (task, agents, findings) in parallel, hydrates the historical
// events, and opens the live feed when the task is still running.
func (s *Session) SwitchTask(ctx context.Context, taskID string) error {
	s.beginEpoch(ctx, taskID)

	if err := s.fetchSnapshot(ctx, taskID); err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return err
	}

	watermark := s.hydrator.Hydrate(ctx, taskID)

	s.mu.Lock()
	s.watermark = watermark
	task := s.task
	s.mu.Unlock()

	if task != nil && IsTaskRunning(task.Status) {
		s.connectLive(ctx)
	} else {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
	}

	return nil
}

// beginEpoch synchronously tears down the previous epoch and resets all
// per-task state. Teardown ordering matters: disconnect first, then reset,
// then the caller begins hydration.
func (s *Session) beginEpoch(ctx context.Context, taskID string) {
	s.feed.Disconnect()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.treeTimer != nil {
		s.treeTimer.Stop()
		s.treeTimer = nil
	}

	s.epoch++
	s.ctx = ctx
	s.taskID = taskID
	s.state = StateHydrating
	s.task = nil
	s.tree = nil
	s.findings = nil
	s.watermark = 0
	s.connectAttempted = false
	s.acc = nil
	s.lastTreeReload = time.Time{}

	s.log.Reset()
	s.hydrator.Reset()
}

// fetchSnapshot loads the task, agent records, and findings in parallel.
// A task fetch failure aborts the switch; tree and findings failures only
// degrade the view.
func (s *Session) fetchSnapshot(ctx context.Context, taskID string) error {
	var (
		task     *api.TaskResponse
		records  []api.AgentRecord
		findings []api.Finding
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		if task, err = s.backend.GetTask(egCtx, taskID); err != nil {
			return fmt.Errorf("failed to fetch task %s: %w", taskID, err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if records, err = s.backend.GetAgentTree(egCtx, taskID); err != nil {
			s.logger.Warn("agent tree fetch failed", "task_id", taskID, "error", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if findings, err = s.backend.ListFindings(egCtx, taskID); err != nil {
			s.logger.Warn("findings fetch failed", "task_id", taskID, "error", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.task = task
	s.tree = BuildTree(records)
	s.findings = findings
	s.lastTreeReload = time.Now()
	s.mu.Unlock()

	return nil
}

// connectLive opens the live feed exactly once per epoch. Preconditions:
// hydration completed and the task is running. Re-renders and repeated calls
// within an epoch are no-ops once the attempt latch is set.
func (s *Session) connectLive(ctx context.Context) {
	s.mu.Lock()
	if s.connectAttempted || !s.hydrator.Loaded() {
		s.mu.Unlock()
		return
	}
	if s.task == nil || !IsTaskRunning(s.task.Status) {
		s.mu.Unlock()
		return
	}
	s.connectAttempted = true
	s.state = StateConnecting
	epoch := s.epoch
	taskID := s.taskID
	watermark := s.watermark
	s.mu.Unlock()

	opts := FeedOptions{
		AfterSequence:    watermark,
		IncludeThinking:  s.opts.IncludeThinking,
		IncludeToolCalls: s.opts.IncludeToolCalls,
	}

	handler := FeedHandler{
		OnEvent:         func(ev api.RawEvent) { s.handleLiveEvent(epoch, ev) },
		OnThinkingStart: func(ev api.RawEvent) { s.handleThinkingStart(epoch, ev) },
		OnThinkingToken: func(ev api.RawEvent) { s.handleThinkingToken(epoch, ev) },
		OnThinkingEnd:   func(ev api.RawEvent) { s.handleThinkingEnd(epoch) },
		OnDisconnect:    func(reason api.StreamDisconnectReason) { s.handleFeedDisconnect(epoch, reason) },
		OnError:         func(err error) { s.handleFeedError(epoch, err) },
	}

	if err := s.feed.Connect(ctx, taskID, opts, handler); err != nil {
		s.logger.Warn("live feed connection failed", "task_id", taskID, "error", err)
		s.mu.Lock()
		if s.epoch == epoch {
			s.state = StateDisconnected
		}
		s.mu.Unlock()
		s.log.Append(LogEntry{
			Kind:    KindError,
			Title:   "Live event stream unavailable",
			Content: err.Error(),
		})
		return
	}

	s.mu.Lock()
	if s.epoch == epoch {
		s.state = StateConnected
	}
	s.mu.Unlock()
}

// handleLiveEvent folds one durable live event into the log. Events from a
// previous epoch are dropped at the door.
func (s *Session) handleLiveEvent(epoch int, ev api.RawEvent) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	outcome := FoldEvent(s.log, ev)

	switch ev.EventType {
	case "task_complete":
		s.updateTaskStatus(epoch, constants.TaskCompleted)
	case "task_error":
		s.updateTaskStatus(epoch, constants.TaskFailed)
	case "task_cancel":
		s.updateTaskStatus(epoch, constants.TaskCancelled)
	}

	if outcome.TreeDirty {
		s.scheduleTreeReload(epoch)
	}
}

func (s *Session) updateTaskStatus(epoch int, status constants.TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch && s.task != nil {
		s.task.Status = status
	}
}

// handleThinkingStart closes any open reasoning entry and begins a fresh
// accumulation. At most one thinking entry is open per agent at a time.
func (s *Session) handleThinkingStart(epoch int, ev api.RawEvent) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	acc := s.acc
	s.acc = &reasoningAccumulator{agentName: ev.AgentName()}
	s.mu.Unlock()

	s.finalizeReasoning(acc)
}

// handleThinkingToken accumulates one reasoning token, opening the streaming
// entry on the first meaningful content and patching it afterwards.
func (s *Session) handleThinkingToken(epoch int, ev api.RawEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return
	}
	if s.acc == nil {
		s.acc = &reasoningAccumulator{agentName: ev.AgentName()}
	}
	s.acc.buffer.WriteString(ev.Message)

	cleaned := CleanReasoningText(s.acc.buffer.String())
	if cleaned == "" {
		return
	}

	if s.acc.entryID == "" {
		s.acc.entryID = s.log.Append(LogEntry{
			Kind:        KindThinking,
			Title:       titleOf(cleaned),
			Content:     cleaned,
			IsStreaming: true,
			AgentName:   s.acc.agentName,
		})
		return
	}

	s.log.Patch(s.acc.entryID, func(e *LogEntry) {
		e.Content = cleaned
	})
}

// handleThinkingEnd finalizes the current reasoning burst.
func (s *Session) handleThinkingEnd(epoch int) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	acc := s.acc
	s.acc = nil
	s.mu.Unlock()

	s.finalizeReasoning(acc)
}

// finalizeReasoning closes an accumulated reasoning burst: the entry gets a
// summary title and stops streaming, or is removed entirely when cleaning
// produced nothing worth showing.
func (s *Session) finalizeReasoning(acc *reasoningAccumulator) {
	if acc == nil {
		return
	}

	cleaned := CleanReasoningText(acc.buffer.String())

	if acc.entryID == "" {
		if cleaned != "" {
			s.log.Append(LogEntry{
				Kind:      KindThinking,
				Title:     titleOf(cleaned),
				Content:   cleaned,
				AgentName: acc.agentName,
			})
		}
		return
	}

	if cleaned == "" {
		s.log.Remove(acc.entryID)
		return
	}

	s.log.Patch(acc.entryID, func(e *LogEntry) {
		e.IsStreaming = false
		e.Title = titleOf(cleaned)
		e.Content = cleaned
	})
}

func (s *Session) handleFeedDisconnect(epoch int, reason api.StreamDisconnectReason) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	s.state = StateDisconnected
	acc := s.acc
	s.acc = nil
	s.mu.Unlock()

	s.finalizeReasoning(acc)
	s.logger.Debug("live feed closed by server", "reason", reason)
}

// handleFeedError surfaces a terminal transport failure as a single error
// entry; recovery below that is the feed's own retry policy.
func (s *Session) handleFeedError(epoch int, err error) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	s.state = StateDisconnected
	s.mu.Unlock()

	s.log.Append(LogEntry{
		Kind:    KindError,
		Title:   "Live event stream error",
		Content: err.Error(),
	})
}

// scheduleTreeReload reloads the agent tree, debounced: a reload inside the
// minimum interval is deferred to the interval boundary, and a burst of
// dispatch events collapses into a single fetch.
func (s *Session) scheduleTreeReload(epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch || s.treeTimer != nil {
		return
	}

	elapsed := time.Since(s.lastTreeReload)
	if elapsed >= s.opts.TreeDebounce {
		s.lastTreeReload = time.Now()
		go s.reloadTree(epoch)
		return
	}

	s.treeTimer = time.AfterFunc(s.opts.TreeDebounce-elapsed, func() {
		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			return
		}
		s.treeTimer = nil
		s.lastTreeReload = time.Now()
		s.mu.Unlock()

		s.reloadTree(epoch)
	})
}

// reloadTree fetches the flat records and rebuilds the forest from scratch.
// A failed fetch keeps the previous tree (stale beats empty).
func (s *Session) reloadTree(epoch int) {
	s.mu.Lock()
	ctx := s.ctx
	taskID := s.taskID
	s.mu.Unlock()

	records, err := s.backend.GetAgentTree(ctx, taskID)
	if err != nil {
		s.logger.Warn("agent tree reload failed", "task_id", taskID, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return
	}
	s.tree = BuildTree(records)
}

// RefreshTask re-fetches the task snapshot. Used by the watch poll loop.
func (s *Session) RefreshTask(ctx context.Context) (*api.TaskResponse, error) {
	s.mu.Lock()
	epoch := s.epoch
	taskID := s.taskID
	s.mu.Unlock()

	if taskID == "" {
		return nil, fmt.Errorf("no task attached")
	}

	task, err := s.backend.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.task = task
	}
	return task, nil
}

// Close tears down the session.
func (s *Session) Close() {
	s.feed.Disconnect()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.treeTimer != nil {
		s.treeTimer.Stop()
		s.treeTimer = nil
	}
	s.state = StateDisconnected
}

// State returns the current epoch connection state.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Task returns the latest task snapshot, or nil before the first fetch.
func (s *Session) Task() *api.TaskResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == nil {
		return nil
	}
	task := *s.task
	return &task
}

// Tree returns the current agent forest.
func (s *Session) Tree() []*AgentNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Findings returns the findings loaded with the snapshot.
func (s *Session) Findings() []api.Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findings
}

// Watermark returns the hydration watermark for the current epoch.
func (s *Session) Watermark() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark
}

// Entries returns a snapshot of the activity log.
func (s *Session) Entries() []LogEntry {
	return s.log.Entries()
}

// FilteredEntries projects the log for a selected agent id.
func (s *Session) FilteredEntries(selectedID string, showAll bool) []LogEntry {
	s.mu.Lock()
	tree := s.tree
	s.mu.Unlock()
	return FilterByAgent(s.log.Entries(), selectedID, tree, showAll)
}

// IsFeedConnected reports whether the live transport is currently open.
func (s *Session) IsFeedConnected() bool {
	return s.feed.IsConnected()
}
