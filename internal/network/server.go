package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"hilberthotel/internal/config"
	"hilberthotel/internal/level"
	"hilberthotel/internal/progress"
	"hilberthotel/internal/terrain"
	"hilberthotel/internal/world"
)

// FloorSource loads floors by name. *level.Pipeline implements it.
type FloorSource interface {
	Load(name string, state *progress.State, opts level.Options) (*level.Result, error)
	Maps() ([]string, error)
}

// Server hands out floors over websocket connections. Requests on one
// connection are answered in order.
type Server struct {
	source       FloorSource
	logger       *log.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	maxMessage   int64
	sendBuffer   int
	seq          atomic.Uint64

	mu    sync.Mutex
	conns map[*Connection]struct{}
}

func NewServer(source FloorSource, cfg config.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "network ", log.LstdFlags|log.Lmicroseconds)
	}
	writeTimeout := cfg.WriteTimeout.Duration()
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	sendBuffer := cfg.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = 16
	}
	return &Server{
		source: source,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
		maxMessage:   cfg.MaxMessageBytes,
		sendBuffer:   sendBuffer,
		conns:        make(map[*Connection]struct{}),
	}
}

// Run serves websocket upgrades on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Printf("http shutdown: %v", err)
		}
		s.closeAll()
	}()

	s.logger.Printf("serving floors on %s", listener.Addr())
	if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("upgrade %s: %v", r.RemoteAddr, err)
		return
	}
	conn := newConnection(ws, s.sendBuffer, s.writeTimeout, s.logger)
	if s.maxMessage > 0 {
		ws.SetReadLimit(s.maxMessage)
	}

	s.track(conn, true)
	defer s.track(conn, false)

	go conn.writePump()
	conn.readPump(s.handle)
}

func (s *Server) track(conn *Connection, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.ws.Close()
	}
}

func (s *Server) handle(conn *Connection, env Envelope) {
	switch env.Type {
	case MessageGenerate:
		s.handleGenerate(conn, env)
	case MessageMaps:
		names, err := s.source.Maps()
		if err != nil {
			s.replyError(conn, env.Seq, err)
			return
		}
		s.reply(conn, MessageMaps, MapsReply{Request: env.Seq, Names: names})
	default:
		s.replyError(conn, env.Seq, fmt.Errorf("unsupported message type %q", env.Type))
	}
}

func (s *Server) handleGenerate(conn *Connection, env Envelope) {
	var req GenerateRequest
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		s.replyError(conn, env.Seq, fmt.Errorf("decode generate request: %w", err))
		return
	}
	state, err := progress.FromSnapshot(req.Progress)
	if err != nil {
		s.replyError(conn, env.Seq, err)
		return
	}

	res, err := s.source.Load(req.Floor, state, level.Options{
		Size:    req.Size,
		Quota:   req.Quota,
		Seed:    req.Seed,
		Windows: req.Windows,
	})
	if err != nil {
		s.replyError(conn, env.Seq, err)
		return
	}
	tilemap, err := world.MarshalMap(res.Grid)
	if err != nil {
		s.replyError(conn, env.Seq, err)
		return
	}

	reply := FloorReply{
		Request:   env.Seq,
		Name:      res.Name,
		Map:       res.Map,
		Kind:      string(res.Kind),
		Generated: res.Generated,
		Seed:      res.Seed,
		Size:      res.Size,
		Quota:     res.Quota,
		Tilemap:   tilemap,
	}
	if res.Generated {
		report := res.Report
		reply.Report = &report
	}
	s.reply(conn, MessageFloor, reply)
}

func (s *Server) replyError(conn *Connection, request uint64, err error) {
	reply := ErrorReply{Request: request, Message: err.Error()}
	var failed *terrain.GenerationFailedError
	if errors.As(err, &failed) {
		for _, m := range failed.Missing {
			reply.Missing = append(reply.Missing, m.String())
		}
	}
	s.reply(conn, MessageError, reply)
}

func (s *Server) reply(conn *Connection, msgType MessageType, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Printf("encode %s reply: %v", msgType, err)
		return
	}
	data, err := Encode(Envelope{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Seq:       s.seq.Add(1),
		Payload:   raw,
	})
	if err != nil {
		s.logger.Printf("encode %s envelope: %v", msgType, err)
		return
	}
	conn.send(data)
}
