package out

import (
	"context"

	lessondomain "robotutor/internal/modules/lesson/domain"
	"robotutor/internal/modules/monitor/domain"
	sessiondomain "robotutor/internal/modules/session/domain"
)

type SessionReader interface {
	Get(ctx context.Context, id string) (sessiondomain.Session, error)
	List(ctx context.Context) ([]sessiondomain.Session, error)
	ListActive(ctx context.Context) ([]sessiondomain.Session, error)
}

type LessonReader interface {
	Get(ctx context.Context, id string) (lessondomain.Lesson, error)
	List(ctx context.Context) ([]lessondomain.Lesson, error)
}

// EventSink delivers pushed events to one connected observer. Sends must
// not block: a slow observer is the sink implementation's problem, never
// the poll loop's.
type EventSink interface {
	SendDashboardStats(stats domain.DashboardStats)
	SendSessionState(state domain.GraphState)
	SendSessionNew(state domain.GraphState)
	SendSessionNotFound(sessionID string)
}

// GatewayHandler is what the transport calls back into. Implemented by the
// notifier; the gateway adapter owns nothing but wire concerns.
type GatewayHandler interface {
	Attach(observerID string, sink EventSink)
	Detach(observerID string)
	Watch(ctx context.Context, observerID, sessionID string)
	Unwatch(observerID, sessionID string)
	ActiveSessions(ctx context.Context) ([]domain.GraphState, error)
}

type Gateway interface {
	Start() error
	Stop(ctx context.Context) error
}

// DaemonStore persists the gateway daemon's pidfile.
type DaemonStore interface {
	WritePID(ctx context.Context, pid int) error
	ReadPID(ctx context.Context) (int, error)
	ClearPID(ctx context.Context) error
	LogPath() string
}
