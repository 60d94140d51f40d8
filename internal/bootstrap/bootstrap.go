// Package bootstrap wires adapters, services and usecases together. All
// dependency injection happens here, by hand.
package bootstrap

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	lessoninadapter "robotutor/internal/modules/lesson/adapter/in"
	lessonoutadapter "robotutor/internal/modules/lesson/adapter/out"
	lessonservice "robotutor/internal/modules/lesson/service"
	lessonusecase "robotutor/internal/modules/lesson/usecase"
	monitorinadapter "robotutor/internal/modules/monitor/adapter/in"
	monitoroutadapter "robotutor/internal/modules/monitor/adapter/out"
	monitorservice "robotutor/internal/modules/monitor/service"
	monitorusecase "robotutor/internal/modules/monitor/usecase"
	sessioninadapter "robotutor/internal/modules/session/adapter/in"
	sessionoutadapter "robotutor/internal/modules/session/adapter/out"
	sessionusecase "robotutor/internal/modules/session/usecase"
	tutorinadapter "robotutor/internal/modules/tutor/adapter/in"
	tutoroutadapter "robotutor/internal/modules/tutor/adapter/out"
	tutorout "robotutor/internal/modules/tutor/port/out"
	tutorservice "robotutor/internal/modules/tutor/service"
	tutorusecase "robotutor/internal/modules/tutor/usecase"
	"robotutor/internal/platform/clock"
	"robotutor/internal/platform/config"
	"robotutor/internal/platform/id"
	"robotutor/internal/ui/dashboard"
)

type App struct {
	LessonCLI  lessoninadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler
	TutorCLI   tutorinadapter.CLIHandler
	MonitorCLI monitorinadapter.CLIHandler
	Gateway    *monitorservice.GatewayService
}

func New(cfg config.Config, log *slog.Logger) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	lessonStore, err := lessonoutadapter.NewSQLiteLessonStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new lesson store: %w", err)
	}
	lessonSvc := lessonservice.NewLessonService(
		clk, ids, lessonStore,
		lessonoutadapter.NewFileSourceReader(),
		lessonoutadapter.NewPluginPlanner(cfg.ContentBin),
	)
	lessonUC := lessonusecase.NewInteractor(lessonSvc)

	sessionStore, err := sessionoutadapter.NewSQLiteSessionStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new session store: %w", err)
	}
	sessionUC := sessionusecase.NewInteractor(sessionStore)

	device, err := newDevice(cfg.Device)
	if err != nil {
		return nil, err
	}
	tutorSvc := tutorservice.NewTutorService(
		clk, ids,
		lessonStore,
		sessionStore,
		tutoroutadapter.NewPluginContentService(cfg.ContentBin),
		tutoroutadapter.NewPluginGraderService(cfg.GraderBin),
		device,
	)
	tutorUC := tutorusecase.NewInteractor(tutorSvc)

	monitorUC := monitorusecase.NewInteractor(sessionStore, lessonStore)
	notifier := monitorservice.NewNotifierService(sessionStore, lessonStore, cfg.PollInterval)
	gateway := monitorservice.NewGatewayService(
		cfg.DataDir,
		notifier,
		monitoroutadapter.NewSocketIOGateway(cfg.GatewayAddr, notifier, log),
		monitoroutadapter.NewFileDaemonStore(cfg.PIDPath, cfg.LogPath),
	)

	return &App{
		LessonCLI:  lessoninadapter.NewCLIHandler(lessonUC),
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		TutorCLI:   tutorinadapter.NewCLIHandler(tutorUC),
		MonitorCLI: monitorinadapter.NewCLIHandler(monitorUC),
		Gateway:    gateway,
	}, nil
}

func newDevice(kind string) (tutorout.Device, error) {
	switch kind {
	case "console", "":
		return tutoroutadapter.NewConsoleDevice(os.Stdin, os.Stdout), nil
	case "none":
		return tutoroutadapter.NewNoopDevice(), nil
	default:
		return nil, fmt.Errorf("unknown device %q", kind)
	}
}

// RunDashboard connects to the gateway and runs the observer TUI.
func RunDashboard(addr string) error {
	client, err := dashboard.Dial(addr)
	if err != nil {
		return err
	}
	program := tea.NewProgram(dashboard.NewModel(client), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
