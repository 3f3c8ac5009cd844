// Package inspect serves generated heightfields over a websocket for
// external debugging tools.
package inspect

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/untitled-sandbox/internal/engine/terrain"
	"github.com/Faultbox/untitled-sandbox/internal/logger"
)

// TileSummary describes one tile in the grid summary.
type TileSummary struct {
	Row  int     `json:"row"`
	Col  int     `json:"col"`
	Seed int64   `json:"seed"`
	Min  float32 `json:"min"`
	Max  float32 `json:"max"`
}

// Summary is sent once when a client connects.
type Summary struct {
	Type      string        `json:"type"`
	Generator string        `json:"generator"`
	NumTiles  int           `json:"num_tiles"`
	TileSize  int           `json:"tile_size"`
	Spacing   float32       `json:"spacing"`
	Seed      int64         `json:"seed"`
	Tiles     []TileSummary `json:"tiles"`
}

// Request asks for one tile's samples.
type Request struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// TileReply carries a tile's samples, row-major.
type TileReply struct {
	Type    string    `json:"type"`
	Row     int       `json:"row"`
	Col     int       `json:"col"`
	Size    int       `json:"size"`
	Samples []float32 `json:"samples"`
}

// ErrorReply reports a bad request. The connection stays open.
type ErrorReply struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

const writeTimeout = 5 * time.Second

// Server is a read-only websocket view of a generated grid.
type Server struct {
	grid      *terrain.Grid
	generator string
	upgrader  websocket.Upgrader
	log       *zap.Logger

	mu      sync.Mutex
	httpSrv *http.Server
	conns   map[*websocket.Conn]struct{}
}

// New creates an inspector for grid. The grid must already be generated.
func New(grid *terrain.Grid, generator string) *Server {
	if !grid.Generated() {
		panic("inspect: grid is not generated")
	}
	return &Server{
		grid:      grid,
		generator: generator,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local debug tool
			},
		},
		log:   logger.Named("inspect"),
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP handler serving the websocket at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("inspector stopped", zap.Error(err))
		}
	}()
	s.log.Info("inspector listening", zap.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}

// Close stops the listener and drops every client.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Summarize builds the grid summary.
func (s *Server) Summarize() Summary {
	cfg := s.grid.Config()
	sum := Summary{
		Type:      "summary",
		Generator: s.generator,
		NumTiles:  cfg.NumTiles,
		TileSize:  cfg.TileSize,
		Spacing:   cfg.Spacing,
		Seed:      cfg.Seed,
	}
	for _, t := range s.grid.Tiles() {
		lo, hi := t.Field().MinMax()
		sum.Tiles = append(sum.Tiles, TileSummary{Row: t.Row, Col: t.Col, Seed: t.Seed(), Min: lo, Max: hi})
	}
	return sum
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	s.log.Debug("client connected", zap.String("remote", r.RemoteAddr))
	if err := s.write(conn, s.Summarize()); err != nil {
		return
	}

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
		if err := s.write(conn, s.reply(req)); err != nil {
			return
		}
	}
}

func (s *Server) reply(req Request) any {
	t, ok := s.grid.TryFetchTile(req.Row, req.Col)
	if !ok {
		return ErrorReply{Type: "error", Error: "no such tile"}
	}
	f := t.Field()
	return TileReply{
		Type:    "tile",
		Row:     t.Row,
		Col:     t.Col,
		Size:    f.Size(),
		Samples: f.Samples(),
	}
}

func (s *Server) write(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(v); err != nil {
		s.log.Debug("websocket write failed", zap.Error(err))
		return err
	}
	return nil
}
