package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"robotutor/internal/bootstrap"
	"robotutor/internal/platform/config"
	"robotutor/internal/platform/ctxlog"
	"robotutor/internal/tutorplugin"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string
	var verbose bool

	root := &cobra.Command{
		Use:           "robotutor",
		Short:         "Robot tutoring sessions with a live dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", defaultDataDir(), "data directory")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newTeachCmd(&dataDir, &verbose))
	root.AddCommand(newLessonCmd(&dataDir, &verbose))
	root.AddCommand(newSessionCmd(&dataDir, &verbose))
	root.AddCommand(newServeCmd(&dataDir, &verbose))
	root.AddCommand(newDashboardCmd(&dataDir))
	root.AddCommand(newStatsCmd(&dataDir, &verbose))
	root.AddCommand(newPluginCmd(&dataDir, &verbose))
	return root
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.robotutor"
	}
	return ".robotutor"
}

func loadApp(dataDir string, verbose bool) (*bootstrap.App, context.Context, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	app, err := bootstrap.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return app, ctxlog.WithLogger(context.Background(), log), nil
}

func newTeachCmd(dataDir *string, verbose *bool) *cobra.Command {
	var studentID, lessonID string

	cmd := &cobra.Command{
		Use:   "teach",
		Short: "Run (or resume) a tutoring session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			out, err := app.TutorCLI.Teach(ctx, studentID, lessonID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %s finished: %d/%d\n", out.SessionID, out.Score, out.ScoreMax)
			if out.NextStep != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "next: %s\n", out.NextStep)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&studentID, "student", "", "student id")
	cmd.Flags().StringVar(&lessonID, "lesson", "", "lesson id")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("lesson")
	return cmd
}

func newLessonCmd(dataDir *string, verbose *bool) *cobra.Command {
	lesson := &cobra.Command{Use: "lesson", Short: "Manage lessons"}

	var title string
	planCmd := &cobra.Command{
		Use:   "plan <source>",
		Short: "Plan a lesson from a pdf or text source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			out, err := app.LessonCLI.Plan(ctx, args[0], title)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "planned %q (%s): %d segments\n", out.Title, out.LessonID, out.SegmentCount)
			return nil
		},
	}
	planCmd.Flags().StringVar(&title, "title", "", "lesson title (optional)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List lessons",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			lessons, err := app.LessonCLI.List(ctx)
			if err != nil {
				return err
			}
			for _, l := range lessons {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %-32s  %d segments  %s\n",
					l.ID, l.Title, l.SegmentCount, l.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a lesson plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			out, err := app.LessonCLI.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}

	lesson.AddCommand(planCmd, listCmd, showCmd)
	return lesson
}

func newSessionCmd(dataDir *string, verbose *bool) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Inspect sessions"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			sessions, err := app.SessionCLI.List(ctx)
			if err != nil {
				return err
			}
			for _, s := range sessions {
				score := "-"
				if s.Score != nil {
					score = fmt.Sprintf("%d/%d", *s.Score, *s.ScoreMax)
				}
				state := "active"
				if s.EndedAt != nil {
					state = "complete"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  student=%s lesson=%s segment=%d score=%s %s\n",
					s.ID, s.StudentID, s.LessonID, s.SegmentIndex, score, state)
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session with its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}

	stateCmd := &cobra.Command{
		Use:   "state <id>",
		Short: "Show a session's derived graph state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			out, err := app.MonitorCLI.SessionState(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}

	var statsStudent string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Per-student session stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.StudentStats(ctx, statsStudent)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	statsCmd.Flags().StringVar(&statsStudent, "student", "", "student id")
	_ = statsCmd.MarkFlagRequired("student")

	activeCmd := &cobra.Command{
		Use:   "active",
		Short: "List active sessions with their derived graph state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			out, err := app.MonitorCLI.ActiveSessions(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}

	session.AddCommand(listCmd, showCmd, stateCmd, statsCmd, activeCmd)
	return session
}

func newStatsCmd(dataDir *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard aggregates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			out, err := app.MonitorCLI.DashboardStats(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
}

func newServeCmd(dataDir *string, verbose *bool) *cobra.Command {
	serve := &cobra.Command{Use: "serve", Short: "Dashboard gateway daemon"}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Serve in the foreground",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Gateway.Run(ctx)
		},
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the gateway in the background",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			if err := app.Gateway.Start(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "gateway started")
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the background gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			if err := app.Gateway.Stop(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "gateway stopped")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show gateway status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := loadApp(*dataDir, *verbose)
			if err != nil {
				return err
			}
			status, err := app.Gateway.Status(ctx)
			if err != nil {
				return err
			}
			if status.Running {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "running pid=%d\n", status.PID)
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not running")
			}
			return nil
		},
	}

	serve.AddCommand(runCmd, startCmd, stopCmd, statusCmd)
	return serve
}

func newDashboardCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the live dashboard",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.New(*dataDir)
			if err != nil {
				return err
			}
			return bootstrap.RunDashboard(cfg.GatewayAddr)
		},
	}
}

func newPluginCmd(dataDir *string, verbose *bool) *cobra.Command {
	plugin := &cobra.Command{Use: "plugin", Short: "Collaborator plugins"}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Probe the configured collaborator binaries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(*dataDir)
			if err != nil {
				return err
			}
			probed := map[string]bool{}
			for _, binary := range []string{cfg.ContentBin, cfg.GraderBin} {
				if probed[binary] {
					continue
				}
				probed[binary] = true
				if err := probePlugin(cmd, binary); err != nil {
					return err
				}
			}
			return nil
		},
	}

	plugin.AddCommand(checkCmd)
	return plugin
}

func probePlugin(cmd *cobra.Command, binary string) error {
	client, closer, err := tutorplugin.Open(binary)
	if err != nil {
		return fmt.Errorf("probe %s: %w", binary, err)
	}
	defer closer()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	info, err := client.Describe(ctx)
	if err != nil {
		return fmt.Errorf("probe %s: %w", binary, err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s roles=%v\n", binary, info.Name, info.Version, info.Roles)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return nil
}
