// Package dashboard is the live observer TUI. It talks to the gateway as a
// socket.io client and renders pushed state; it never touches the database.
package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"robotutor/internal/modules/monitor/dto"
)

// Events delivered on the client channel.
type (
	ConnectedEvent      struct{}
	DisconnectedEvent   struct{ Reason string }
	StatsEvent          dto.DashboardStatsOutput
	SessionStateEvent   dto.GraphStateOutput
	SessionNewEvent     dto.GraphStateOutput
	ActiveSessionsEvent []dto.GraphStateOutput
	NotFoundEvent       struct{ SessionID string }
)

type Client struct {
	io     *socket.Socket
	events chan any
}

// Dial connects to the gateway. Events stream on Events(); a slow consumer
// loses events rather than backing up the socket callbacks.
func Dial(addr string) (*Client, error) {
	opts := socket.DefaultOptions()
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager("http://"+addr, opts)
	io := manager.Socket("/", opts)

	c := &Client{io: io, events: make(chan any, 64)}

	io.On(types.EventName("connect"), func(...any) {
		c.push(ConnectedEvent{})
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		c.push(DisconnectedEvent{Reason: fmt.Sprint(errs...)})
	})
	io.On(types.EventName("disconnect"), func(args ...any) {
		c.push(DisconnectedEvent{Reason: fmt.Sprint(args...)})
	})
	io.On(types.EventName("dashboard_stats"), func(data ...any) {
		var stats dto.DashboardStatsOutput
		if decode(data, &stats) {
			c.push(StatsEvent(stats))
		}
	})
	io.On(types.EventName("session_state"), func(data ...any) {
		var state dto.GraphStateOutput
		if decode(data, &state) {
			c.push(SessionStateEvent(state))
		}
	})
	io.On(types.EventName("session_new"), func(data ...any) {
		var state dto.GraphStateOutput
		if decode(data, &state) {
			c.push(SessionNewEvent(state))
		}
	})
	io.On(types.EventName("active_sessions"), func(data ...any) {
		var states []dto.GraphStateOutput
		if decode(data, &states) {
			c.push(ActiveSessionsEvent(states))
		}
	})
	io.On(types.EventName("session_not_found"), func(data ...any) {
		var missing dto.SessionNotFoundOutput
		if decode(data, &missing) {
			c.push(NotFoundEvent{SessionID: missing.SessionID})
		}
	})

	io.Connect()
	return c, nil
}

func (c *Client) Events() <-chan any {
	return c.events
}

func (c *Client) Watch(sessionID string) {
	c.io.Emit("watch_session", sessionID)
}

func (c *Client) Unwatch(sessionID string) {
	c.io.Emit("unwatch_session", sessionID)
}

func (c *Client) RequestActiveSessions() {
	c.io.Emit("request_active_sessions")
}

func (c *Client) Close() {
	c.io.Disconnect()
}

func (c *Client) push(event any) {
	select {
	case c.events <- event:
	default:
	}
}

// decode round-trips the loosely typed socket.io payload through json into
// the expected dto.
func decode(data []any, target any) bool {
	if len(data) == 0 {
		return false
	}
	raw, err := json.Marshal(data[0])
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, target) == nil
}
