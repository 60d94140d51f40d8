package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	monitorout "robotutor/internal/modules/monitor/port/out"
	"robotutor/internal/platform/ctxlog"
	apperrors "robotutor/internal/platform/errors"
)

// GatewayService runs the serving process and manages it as a background
// daemon: pidfile bookkeeping, spawn, stop, status.
type GatewayService struct {
	dataDir  string
	notifier *NotifierService
	gateway  monitorout.Gateway
	daemon   monitorout.DaemonStore
}

type DaemonStatus struct {
	Running bool
	PID     int
}

func NewGatewayService(dataDir string, notifier *NotifierService, gateway monitorout.Gateway, daemon monitorout.DaemonStore) *GatewayService {
	return &GatewayService{dataDir: dataDir, notifier: notifier, gateway: gateway, daemon: daemon}
}

// Run serves in the foreground until the context is cancelled.
func (s *GatewayService) Run(ctx context.Context) error {
	if err := s.daemon.WritePID(ctx, os.Getpid()); err != nil {
		return err
	}
	defer func() {
		_ = s.daemon.ClearPID(context.Background())
	}()

	if err := s.gateway.Start(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDaemonStartFailed, err)
	}
	ctxlog.FromContext(ctx).Info("gateway serving")

	err := s.notifier.Run(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if stopErr := s.gateway.Stop(stopCtx); stopErr != nil {
		ctxlog.FromContext(ctx).Warn("gateway stop failed", "error", stopErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Start spawns the gateway as a detached background process.
func (s *GatewayService) Start(ctx context.Context) error {
	status, err := s.Status(ctx)
	if err == nil && status.Running {
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.daemon.LogPath()), 0o755); err != nil {
		return fmt.Errorf("create daemon log dir: %w", err)
	}
	logFile, err := os.OpenFile(s.daemon.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(execPath, "serve", "run", "--data", s.dataDir)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDaemonStartFailed, err)
	}
	if err := s.daemon.WritePID(ctx, cmd.Process.Pid); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("gateway daemon started", "pid", cmd.Process.Pid)
	return nil
}

func (s *GatewayService) Stop(ctx context.Context) error {
	pid, err := s.daemon.ReadPID(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.ErrDaemonNotRunning
		}
		return err
	}
	if !processAlive(pid) {
		_ = s.daemon.ClearPID(ctx)
		return apperrors.ErrDaemonNotRunning
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("stop gateway pid=%d: %w", pid, err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if processAlive(pid) {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
	return s.daemon.ClearPID(ctx)
}

func (s *GatewayService) Status(ctx context.Context) (DaemonStatus, error) {
	pid, err := s.daemon.ReadPID(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DaemonStatus{}, nil
		}
		return DaemonStatus{}, err
	}
	return DaemonStatus{PID: pid, Running: processAlive(pid)}, nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
