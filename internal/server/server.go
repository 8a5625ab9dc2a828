// Package server hosts the trainer over SSH. Each session runs its own
// trainer model; sessions share the run history store.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/verte-zerg/aimtui/internal/model"
	"github.com/verte-zerg/aimtui/internal/store"
	"github.com/verte-zerg/aimtui/internal/tui"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// Config holds listener and per-session trainer settings.
type Config struct {
	Host        string
	Port        string
	HostKeyPath string
	Trainer     model.Config
	NoSave      bool
}

// Server is an SSH server running the trainer UI.
type Server struct {
	cfg    Config
	store  *store.Store
	logger *log.Logger
	srv    *ssh.Server
}

// New builds the SSH server. st may be nil, in which case runs are not
// persisted.
func New(cfg Config, st *store.Store, logger *log.Logger) (*Server, error) {
	s := &Server{cfg: cfg, store: st, logger: logger}
	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.Host, cfg.Port)),
		wish.WithMiddleware(
			bm.Middleware(s.teaHandler),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Mouse presses are latency sensitive.
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if cfg.HostKeyPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create host key directory: %w", err)
		}
		opts = append(opts, wish.WithHostKeyPath(cfg.HostKeyPath))
	}
	srv, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh server: %w", err)
	}
	s.srv = srv
	return s, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting ssh server", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down ssh server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("failed to shut down ssh server: %w", err)
	}
	return nil
}

func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()
	s.logger.Info("session started", "user", sess.User(), "term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)
	// Styles must follow the client's terminal, not the server's stdout.
	r := bm.MakeRenderer(sess)
	return s.sessionModel(sess.User(), r), []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
}

// sessionModel builds an independent trainer for one session, drawing with
// r. Audio is never enabled remotely.
func (s *Server) sessionModel(user string, r *lipgloss.Renderer) *tui.Model {
	return tui.NewModel(s.cfg.Trainer, tui.Options{
		Store:    s.store,
		NoSave:   s.cfg.NoSave,
		Logger:   s.logger.With("user", user),
		Renderer: r,
	})
}
