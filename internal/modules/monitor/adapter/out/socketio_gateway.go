package out

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"

	"robotutor/internal/modules/monitor/domain"
	"robotutor/internal/modules/monitor/dto"
	monitorout "robotutor/internal/modules/monitor/port/out"
)

// SocketIOGateway exposes the notifier over socket.io. One connected client
// is one observer; its socket id doubles as the observer id.
type SocketIOGateway struct {
	addr    string
	handler monitorout.GatewayHandler
	log     *slog.Logger

	http *types.HttpServer
	io   *socket.Server
}

func NewSocketIOGateway(addr string, handler monitorout.GatewayHandler, log *slog.Logger) monitorout.Gateway {
	return &SocketIOGateway{addr: addr, handler: handler, log: log}
}

func (g *SocketIOGateway) Start() error {
	g.http = types.NewWebServer(nil)
	g.io = socket.NewServer(g.http, nil)

	err := g.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		g.register(client)
	})
	if err != nil {
		return fmt.Errorf("register connection handler: %w", err)
	}

	g.http.Listen(g.addr, nil)
	g.log.Info("socket.io gateway listening", "addr", g.addr)
	return nil
}

func (g *SocketIOGateway) register(client *socket.Socket) {
	observerID := string(client.Id())
	g.log.Info("observer connected", "observer_id", observerID)
	g.handler.Attach(observerID, &socketSink{client: client})

	client.On("watch_session", func(args ...any) {
		if id, ok := eventString(args); ok {
			g.handler.Watch(context.Background(), observerID, id)
		}
	})
	client.On("unwatch_session", func(args ...any) {
		if id, ok := eventString(args); ok {
			g.handler.Unwatch(observerID, id)
		}
	})
	client.On("request_active_sessions", func(...any) {
		states, err := g.handler.ActiveSessions(context.Background())
		if err != nil {
			g.log.Warn("active sessions lookup failed", "error", err)
			return
		}
		out := make([]dto.GraphStateOutput, 0, len(states))
		for _, state := range states {
			out = append(out, mapGraphState(state))
		}
		client.Emit("active_sessions", out)
	})
	client.On("disconnect", func(...any) {
		g.log.Info("observer disconnected", "observer_id", observerID)
		g.handler.Detach(observerID)
	})
}

func (g *SocketIOGateway) Stop(_ context.Context) error {
	if g.io != nil {
		g.io.Close(nil)
	}
	if g.http != nil {
		g.http.Close(nil)
	}
	return nil
}

// eventString accepts both a bare id and an object payload.
func eventString(args []any) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	switch v := args[0].(type) {
	case string:
		return v, v != ""
	case map[string]any:
		if id, ok := v["session_id"].(string); ok {
			return id, id != ""
		}
	}
	return "", false
}

// socketSink delivers events to one client. socket.io buffers writes per
// connection, so emits return without waiting on the peer.
type socketSink struct {
	client *socket.Socket
}

func (s *socketSink) SendDashboardStats(stats domain.DashboardStats) {
	s.client.Emit("dashboard_stats", dto.DashboardStatsOutput{
		Lessons:         stats.Lessons,
		Sessions:        stats.Sessions,
		Students:        stats.Students,
		Completed:       stats.Completed,
		AverageScorePct: stats.AverageScorePct,
	})
}

func (s *socketSink) SendSessionState(state domain.GraphState) {
	s.client.Emit("session_state", mapGraphState(state))
}

func (s *socketSink) SendSessionNew(state domain.GraphState) {
	s.client.Emit("session_new", mapGraphState(state))
}

func (s *socketSink) SendSessionNotFound(sessionID string) {
	s.client.Emit("session_not_found", dto.SessionNotFoundOutput{SessionID: sessionID})
}

func mapGraphState(state domain.GraphState) dto.GraphStateOutput {
	return dto.GraphStateOutput{
		SessionID:     state.SessionID,
		StudentID:     state.StudentID,
		LessonID:      state.LessonID,
		LessonTitle:   state.LessonTitle,
		Node:          string(state.Node),
		SegmentIndex:  state.SegmentIndex,
		SegmentCount:  state.SegmentCount,
		ProgressPct:   state.ProgressPct,
		ActiveSegment: state.ActiveSegment,
		ScorePct:      state.ScorePct,
	}
}
