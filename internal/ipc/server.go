package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"longtake/internal/daemon"
	"longtake/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Longtake", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.logger.Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.Engine = status.Engine
	resp.Overlay = status.Visibility
	resp.Muted = status.Muted
	resp.JournalDBPath = status.JournalDBPath
	resp.JournalCount = status.JournalCount
	resp.LockPath = status.LockFilePath
	resp.GraphPath = status.GraphPath
	return nil
}

func (s *service) Navigate(req NavigateRequest, resp *NavigateResponse) error {
	snap, err := s.daemon.Navigate(req.Intent, req.Target)
	resp.Engine = snap
	if err != nil {
		resp.Accepted = false
		resp.Message = err.Error()
		return nil
	}
	resp.Accepted = true
	return nil
}

func (s *service) InputWheel(req WheelRequest, resp *GestureResponse) error {
	verdict, snap := s.daemon.Wheel(req.Delta)
	resp.Verdict = verdict.String()
	resp.Engine = snap
	return nil
}

func (s *service) InputTouch(req TouchRequest, resp *GestureResponse) error {
	verdict, snap := s.daemon.Touch(req.Distance)
	resp.Verdict = verdict.String()
	resp.Engine = snap
	return nil
}

func (s *service) JournalList(req JournalListRequest, resp *JournalListResponse) error {
	entries, err := s.daemon.JournalList(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = make([]JournalEntry, 0, len(entries))
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, JournalEntry{
			ID:          entry.ID,
			AttemptID:   entry.AttemptID,
			From:        string(entry.From),
			To:          string(entry.To),
			Clip:        string(entry.Clip),
			Trigger:     entry.Trigger,
			LoopWaitMS:  entry.LoopWait.Milliseconds(),
			BridgeMS:    entry.Bridge.Milliseconds(),
			Fallback:    entry.Fallback,
			Reason:      entry.Reason,
			CommittedAt: entry.CommittedAt,
		})
	}
	return nil
}

func (s *service) Mute(req MuteRequest, resp *MuteResponse) error {
	if err := s.daemon.SetMuted(s.ctx, req.Muted); err != nil {
		return err
	}
	resp.Muted = req.Muted
	return nil
}
