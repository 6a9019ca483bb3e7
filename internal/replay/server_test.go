package replay

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/auditdeck/auditdeck/internal/api"
	"github.com/auditdeck/auditdeck/internal/constants"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, scenario *Scenario) (*Server, *httptest.Server) {
	t.Helper()
	server := NewServer(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return server, ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func serverScenario() *Scenario {
	return &Scenario{
		Task: api.TaskResponse{
			TaskID: "task-1",
			Name:   "test audit",
			Status: constants.TaskRunning,
		},
		Agents: []api.AgentRecord{
			{AgentID: "root", AgentName: "orchestrator", Status: constants.AgentRunning},
		},
		Findings: []api.Finding{
			{FindingID: "f1", Title: "weak cipher", Severity: api.SeverityLow},
		},
		History: []api.RawEvent{
			{Sequence: 1, EventType: "info", Message: "one"},
			{Sequence: 2, EventType: "info", Message: "two"},
			{Sequence: 3, EventType: "info", Message: "three"},
		},
	}
}

func TestServerREST(t *testing.T) {
	_, ts := testServer(t, serverScenario())

	t.Run("health", func(t *testing.T) {
		var body map[string]string
		resp := getJSON(t, ts.URL+"/health", &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("list tasks", func(t *testing.T) {
		var tasks []api.TaskSummary
		getJSON(t, ts.URL+"/api/v1/tasks", &tasks)
		require.Len(t, tasks, 1)
		assert.Equal(t, "task-1", tasks[0].TaskID)
	})

	t.Run("get task", func(t *testing.T) {
		var task api.TaskResponse
		getJSON(t, ts.URL+"/api/v1/tasks/task-1", &task)
		assert.Equal(t, "test audit", task.Name)
		assert.Equal(t, constants.TaskRunning, task.Status)
	})

	t.Run("unknown task id is 404", func(t *testing.T) {
		resp := getJSON(t, ts.URL+"/api/v1/tasks/nope", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("events respect the limit tail", func(t *testing.T) {
		var events api.EventsResponse
		getJSON(t, ts.URL+"/api/v1/tasks/task-1/events?limit=2", &events)
		require.Len(t, events.Events, 2)
		// The tail of the history, not the head.
		assert.Equal(t, int64(2), events.Events[0].Sequence)
		assert.Equal(t, int64(3), events.Events[1].Sequence)
	})

	t.Run("agents", func(t *testing.T) {
		var agents api.AgentTreeResponse
		getJSON(t, ts.URL+"/api/v1/tasks/task-1/agents", &agents)
		require.Len(t, agents.Agents, 1)
		assert.Equal(t, "orchestrator", agents.Agents[0].AgentName)
	})

	t.Run("findings", func(t *testing.T) {
		var findings api.FindingsResponse
		getJSON(t, ts.URL+"/api/v1/tasks/task-1/findings", &findings)
		require.Len(t, findings.Findings, 1)
		assert.Equal(t, api.SeverityLow, findings.Findings[0].Severity)
	})
}

func dialStream(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/tasks/task-1/stream" + query
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) api.RawEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev api.RawEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestServerStream(t *testing.T) {
	t.Run("replays backlog after the resume cursor", func(t *testing.T) {
		_, ts := testServer(t, serverScenario())
		conn := dialStream(t, ts, "?after_sequence=1")

		first := readEvent(t, conn)
		assert.Equal(t, int64(2), first.Sequence)
		second := readEvent(t, conn)
		assert.Equal(t, int64(3), second.Sequence)
	})

	t.Run("terminal task sends backlog then disconnect", func(t *testing.T) {
		sc := serverScenario()
		sc.Task.Status = constants.TaskCompleted
		_, ts := testServer(t, sc)
		conn := dialStream(t, ts, "?after_sequence=2")

		ev := readEvent(t, conn)
		assert.Equal(t, int64(3), ev.Sequence)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var control api.StreamControlMessage
		require.NoError(t, conn.ReadJSON(&control))
		assert.Equal(t, api.StreamMessageTypeDisconnect, control.Type)
		require.NotNil(t, control.Reason)
		assert.Equal(t, api.StreamDisconnectReasonTaskCompleted, *control.Reason)
	})

	t.Run("live events are pushed and persisted for later hydration", func(t *testing.T) {
		sc := serverScenario()
		sc.Live = []TimedEvent{
			{DelayMs: 10, Event: api.RawEvent{EventType: "thinking_token", Message: "tok"}},
			{DelayMs: 10, Event: api.RawEvent{Sequence: 4, EventType: "info", Message: "live"}},
		}
		server, ts := testServer(t, sc)
		conn := dialStream(t, ts, "?after_sequence=3")

		server.StartReplay(context.Background())

		// The streaming-only token arrives first, then the durable event.
		tok := readEvent(t, conn)
		assert.Equal(t, "thinking_token", tok.EventType)
		assert.Zero(t, tok.Sequence)

		live := readEvent(t, conn)
		assert.Equal(t, int64(4), live.Sequence)

		// After the replay ends the task is terminal and the durable event is
		// part of the history page; the token is not.
		require.Eventually(t, func() bool {
			var task api.TaskResponse
			getJSON(t, ts.URL+"/api/v1/tasks/task-1", &task)
			return task.Status == constants.TaskCompleted
		}, 2*time.Second, 10*time.Millisecond)

		var events api.EventsResponse
		getJSON(t, ts.URL+"/api/v1/tasks/task-1/events", &events)
		require.Len(t, events.Events, 4)
		assert.Equal(t, int64(4), events.Events[3].Sequence)
	})
}
