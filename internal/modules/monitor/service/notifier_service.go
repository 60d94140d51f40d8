// Package service holds the gateway's moving parts: the polling notifier
// that diffs persisted state into events, and the daemon lifecycle around
// the serving process.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	lessondomain "robotutor/internal/modules/lesson/domain"
	"robotutor/internal/modules/monitor/domain"
	monitorout "robotutor/internal/modules/monitor/port/out"
	sessiondomain "robotutor/internal/modules/session/domain"
	"robotutor/internal/platform/ctxlog"
	apperrors "robotutor/internal/platform/errors"
)

// NotifierService polls the store and pushes diffs to connected observers.
// It is the writer's only counterpart: the two processes share nothing but
// the database file.
type NotifierService struct {
	sessions monitorout.SessionReader
	lessons  monitorout.LessonReader
	interval time.Duration

	mu        sync.RWMutex
	sinks     map[string]monitorout.EventSink
	watchers  map[string]map[string]struct{}
	watchedBy map[string]map[string]struct{}
	lastStats *domain.DashboardStats
	lastGraph map[string]domain.GraphState
	seen      map[string]struct{}
}

func NewNotifierService(sessions monitorout.SessionReader, lessons monitorout.LessonReader, interval time.Duration) *NotifierService {
	return &NotifierService{
		sessions:  sessions,
		lessons:   lessons,
		interval:  interval,
		sinks:     map[string]monitorout.EventSink{},
		watchers:  map[string]map[string]struct{}{},
		watchedBy: map[string]map[string]struct{}{},
		lastGraph: map[string]domain.GraphState{},
		seen:      map[string]struct{}{},
	}
}

// Run polls until the context is cancelled. The first tick happens
// immediately so a fresh gateway has state before the first interval ends.
func (s *NotifierService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one poll pass. Exported so the serve loop and tests can drive
// polling without real time.
func (s *NotifierService) Tick(ctx context.Context) {
	log := ctxlog.FromContext(ctx)

	sessions, err := s.sessions.List(ctx)
	if err != nil {
		log.Warn("notifier poll failed", "error", err)
		return
	}
	lessons, err := s.lessons.List(ctx)
	if err != nil {
		log.Warn("notifier poll failed", "error", err)
		return
	}
	lessonByID := map[string]*lessondomain.Lesson{}
	for i := range lessons {
		lessonByID[lessons[i].ID] = &lessons[i]
	}

	stats := domain.Aggregate(len(lessons), sessions)
	sessionByID := map[string]sessiondomain.Session{}
	for _, session := range sessions {
		sessionByID[session.ID] = session
	}

	s.mu.Lock()
	statsChanged := s.lastStats == nil || !s.lastStats.Equal(stats)
	s.lastStats = &stats

	var newStates []domain.GraphState
	for _, session := range sessions {
		if _, ok := s.seen[session.ID]; ok {
			continue
		}
		s.seen[session.ID] = struct{}{}
		if !session.Scored() {
			newStates = append(newStates, domain.Project(session, lessonByID[session.LessonID]))
		}
	}

	type delivery struct {
		state domain.GraphState
		to    []monitorout.EventSink
	}
	var deliveries []delivery
	for sessionID, observers := range s.watchers {
		session, ok := sessionByID[sessionID]
		if !ok {
			continue
		}
		state := domain.Project(session, lessonByID[session.LessonID])
		if previous, ok := s.lastGraph[sessionID]; ok && previous.Equal(state) {
			continue
		}
		s.lastGraph[sessionID] = state
		to := make([]monitorout.EventSink, 0, len(observers))
		for observerID := range observers {
			if sink, ok := s.sinks[observerID]; ok {
				to = append(to, sink)
			}
		}
		deliveries = append(deliveries, delivery{state: state, to: to})
	}

	allSinks := make([]monitorout.EventSink, 0, len(s.sinks))
	for _, sink := range s.sinks {
		allSinks = append(allSinks, sink)
	}
	s.mu.Unlock()

	if statsChanged {
		for _, sink := range allSinks {
			sink.SendDashboardStats(stats)
		}
	}
	for _, state := range newStates {
		for _, sink := range allSinks {
			sink.SendSessionNew(state)
		}
	}
	for _, d := range deliveries {
		for _, sink := range d.to {
			sink.SendSessionState(d.state)
		}
	}
}

func (s *NotifierService) Attach(observerID string, sink monitorout.EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks[observerID] = sink
}

// Detach drops the observer and every subscription it holds.
func (s *NotifierService) Detach(observerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sinks, observerID)
	for sessionID := range s.watchedBy[observerID] {
		delete(s.watchers[sessionID], observerID)
		if len(s.watchers[sessionID]) == 0 {
			delete(s.watchers, sessionID)
			delete(s.lastGraph, sessionID)
		}
	}
	delete(s.watchedBy, observerID)
}

// Watch subscribes the observer to a session. A missing session gets one
// not-found signal but stays subscribed, so updates flow once a matching
// record appears.
func (s *NotifierService) Watch(ctx context.Context, observerID, sessionID string) {
	_, err := s.sessions.Get(ctx, sessionID)
	missing := errors.Is(err, apperrors.ErrNotFound)
	if err != nil && !missing {
		ctxlog.FromContext(ctx).Warn("watch lookup failed", "session_id", sessionID, "error", err)
	}

	s.mu.Lock()
	if s.watchers[sessionID] == nil {
		s.watchers[sessionID] = map[string]struct{}{}
	}
	s.watchers[sessionID][observerID] = struct{}{}
	if s.watchedBy[observerID] == nil {
		s.watchedBy[observerID] = map[string]struct{}{}
	}
	s.watchedBy[observerID][sessionID] = struct{}{}
	sink := s.sinks[observerID]
	s.mu.Unlock()

	if missing && sink != nil {
		sink.SendSessionNotFound(sessionID)
	}
}

func (s *NotifierService) Unwatch(observerID, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watchers[sessionID], observerID)
	if len(s.watchers[sessionID]) == 0 {
		delete(s.watchers, sessionID)
		delete(s.lastGraph, sessionID)
	}
	delete(s.watchedBy[observerID], sessionID)
}

// ActiveSessions projects every unscored session.
func (s *NotifierService) ActiveSessions(ctx context.Context) ([]domain.GraphState, error) {
	sessions, err := s.sessions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	lessons, err := s.lessons.List(ctx)
	if err != nil {
		return nil, err
	}
	lessonByID := map[string]*lessondomain.Lesson{}
	for i := range lessons {
		lessonByID[lessons[i].ID] = &lessons[i]
	}
	states := make([]domain.GraphState, 0, len(sessions))
	for _, session := range sessions {
		states = append(states, domain.Project(session, lessonByID[session.LessonID]))
	}
	return states, nil
}
