// Package status serves the operator endpoints: health, metrics and a
// WebSocket feed of bus events.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"prBot/internal/app/events"
	"prBot/internal/domain"
	"prBot/internal/usecase/commands"
)

const writeTimeout = 5 * time.Second

// streamedTopics are forwarded to every /ws client.
var streamedTopics = []string{
	events.TopicCommandCompleted,
	events.TopicCommandErrored,
	events.TopicPresenceChanged,
	events.TopicExtensionState,
	events.TopicUsageDropped,
}

const defaultAddr = "127.0.0.1:8080"

type Config struct {
	Addr string
	// AllowedOrigins lists browser origins, besides the server's own host,
	// that may open /ws.
	AllowedOrigins []string
	Bus        *events.Bus
	Commands   *commands.Service
	Extensions func() []domain.Extension
	Gatherer   prometheus.Gatherer
	Logger     zerolog.Logger
}

func (c *Config) addr() string {
	if c.Addr == "" {
		return defaultAddr
	}
	return c.Addr
}

type Server struct {
	cfg      Config
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}

	forwardOnce sync.Once
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func NewServer(cfg Config) *Server {
	return &Server{
		cfg: cfg,
		log: cfg.Logger.With().Str("component", "status").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(cfg.AllowedOrigins),
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients), same-host origins and the configured allow list.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return slices.ContainsFunc(allowed, func(a string) bool {
			return strings.EqualFold(strings.TrimSuffix(a, "/"), origin)
		})
	}
}

// Handler returns the routes and starts forwarding bus events to /ws
// clients until ctx is done.
func (s *Server) Handler(ctx context.Context) http.Handler {
	s.forwardOnce.Do(func() {
		if s.cfg.Bus != nil {
			for _, topic := range streamedTopics {
				s.forward(ctx, topic)
			}
		}
	})

	mux := http.NewServeMux()
	api := &apiHandlers{
		commands:   s.cfg.Commands,
		extensions: s.cfg.Extensions,
		gatherer:   s.cfg.Gatherer,
	}
	api.register(mux)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.handleWS(ctx, w, r)
	})
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.addr(),
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("shutdown error")
		}
		s.closeClients()
	}()

	s.log.Info().Str("addr", srv.Addr).Msg("status server listening")
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("upgrade error")
		return
	}

	client := &wsClient{conn: conn}

	s.mu.Lock()
	s.clients[client] = struct{}{}
	clientCount := len(s.clients)
	s.mu.Unlock()

	s.log.Info().Str("remote", r.RemoteAddr).Int("clients", clientCount).Msg("ws client connected")

	go s.handleClient(ctx, client)
}

// handleClient only reads to notice the peer going away.
func (s *Server) handleClient(ctx context.Context, client *wsClient) {
	defer s.drop(client)

	for {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("ws read error")
			}
			return
		}
	}
}

func (s *Server) forward(ctx context.Context, topic string) {
	ch, unsubscribe := s.cfg.Bus.Subscribe(topic)
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.Broadcast(envelope{Type: topic, Data: msg})
			}
		}
	}()
}

// Broadcast writes v to every connected client, dropping the ones that fail.
func (s *Server) Broadcast(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Msg("encode broadcast")
		return
	}

	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(json.RawMessage(payload)); err != nil {
			s.log.Debug().Err(err).Msg("removing ws client after write error")
			s.drop(c)
		}
	}
}

func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) drop(c *wsClient) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	clientCount := len(s.clients)
	s.mu.Unlock()

	if ok {
		c.conn.Close()
		s.log.Info().Int("clients", clientCount).Msg("ws client disconnected")
	}
}

func (s *Server) closeClients() {
	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()
	for _, c := range clients {
		s.drop(c)
	}
}
