package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/studiowebux/liftload/internal/types"
	"github.com/studiowebux/liftload/internal/workload"
)

const maxLogs = 1000

// Server is a local stand-in for the skier API
type Server struct {
	config     *Config
	store      *Store
	logger     *zap.Logger
	httpServer *http.Server
	listener   net.Listener

	logs      []RequestLog
	logsMutex sync.RWMutex

	randMu sync.Mutex
	rng    *rand.Rand
}

// NewServer creates a new mock server
func NewServer(cfg *Config, logger *zap.Logger) *Server {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.APIPath == "" {
		cfg.APIPath = "/skiers/liftrides"
	}
	if cfg.ReadPrefix == "" {
		cfg.ReadPrefix = "skiers"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		config: cfg,
		store:  NewStore(),
		logger: logger,
		logs:   make([]RequestLog, 0),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Handler returns the router serving the skier API
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logMiddleware)
	r.Use(s.chaosMiddleware)

	apiPath := "/" + strings.Trim(s.config.APIPath, "/")
	prefix := "/" + strings.Trim(s.config.ReadPrefix, "/")

	r.Post(apiPath, s.handleLiftRide)
	r.Get(prefix+"/{resortID}/days/{dayID}/skiers/{skierID}", s.handleSkierDay)
	r.Get(prefix+"/{skierID}/vertical", s.handleSkierVertical)

	return r
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("mock server error", zap.Error(err))
		}
	}()

	s.logger.Info("mock server listening", zap.String("address", s.GetAddress()))
	return nil
}

// Stop stops the mock server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// GetAddress returns the server base URL, including the bound port once started
func (s *Server) GetAddress() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}

// Store returns the server's ride store
func (s *Server) Store() *Store {
	return s.store
}

// handleLiftRide accepts a lift ride POST
func (s *Server) handleLiftRide(w http.ResponseWriter, r *http.Request) {
	var ride types.LiftRide
	if err := json.NewDecoder(r.Body).Decode(&ride); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := validateRide(ride); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.store.Add(ride)
	writeJSON(w, http.StatusOK, ride)
}

// handleSkierDay returns a skier's vertical for one day
func (s *Server) handleSkierDay(w http.ResponseWriter, r *http.Request) {
	resort := pathParam(r, "resortID")
	day, err := strconv.Atoi(pathParam(r, "dayID"))
	if err != nil || day < 1 || day > 366 {
		http.Error(w, "dayID must be between 1 and 366", http.StatusBadRequest)
		return
	}
	skierID, err := strconv.Atoi(pathParam(r, "skierID"))
	if err != nil || skierID < 1 {
		http.Error(w, "skierID must be a positive integer", http.StatusBadRequest)
		return
	}

	vertical, _ := s.store.DayVertical(resort, day, skierID)
	writeJSON(w, http.StatusOK, VerticalResponse{ResortID: resort, SkierID: skierID, DayID: day, Vertical: vertical})
}

// handleSkierVertical returns a skier's vertical across all days at a resort
func (s *Server) handleSkierVertical(w http.ResponseWriter, r *http.Request) {
	skierID, err := strconv.Atoi(pathParam(r, "skierID"))
	if err != nil || skierID < 1 {
		http.Error(w, "skierID must be a positive integer", http.StatusBadRequest)
		return
	}
	resort := r.URL.Query().Get("resort")
	if resort == "" {
		http.Error(w, "resort query parameter is required", http.StatusBadRequest)
		return
	}

	vertical, _ := s.store.TotalVertical(resort, skierID)
	writeJSON(w, http.StatusOK, VerticalResponse{ResortID: resort, SkierID: skierID, Vertical: vertical})
}

// chaosMiddleware applies the configured delay and failure rate
func (s *Server) chaosMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Delay > 0 {
			select {
			case <-time.After(time.Duration(s.config.Delay) * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}
		if s.shouldFail() {
			http.Error(w, "injected failure", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) shouldFail() bool {
	if s.config.FailureRate <= 0 {
		return false
	}
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rng.Float64() < s.config.FailureRate
}

// logMiddleware records every request when logging is enabled
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.config.Logging {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logRequest(RequestLog{
			Timestamp: start,
			Method:    r.Method,
			Path:      r.URL.Path,
			Status:    status,
			Duration:  time.Since(start),
		})
	})
}

// logRequest adds a request to the log
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)

	// Keep only the most recent entries
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}
}

// GetLogs returns all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}

func validateRide(ride types.LiftRide) error {
	switch {
	case ride.ResortID == "":
		return errors.New("resortID is required")
	case ride.DayID < 1 || ride.DayID > 366:
		return errors.New("dayID must be between 1 and 366")
	case ride.SkierID < 1:
		return errors.New("skierID must be a positive integer")
	case ride.LiftID < 1:
		return errors.New("liftID must be a positive integer")
	case ride.Time < 1 || ride.Time > workload.SkiDayMinutes:
		return fmt.Errorf("time must be between 1 and %d", workload.SkiDayMinutes)
	}
	return nil
}

func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
