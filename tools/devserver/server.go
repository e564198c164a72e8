package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tgreview/tgreview/tools/devserver/dataset"
)

// server is the fake relevance API. It mimics the production service's wire
// format so the dashboard can be exercised without a real backend.
type server struct {
	data   *dataset.Dataset
	logger *slog.Logger

	mu     sync.Mutex
	tokens map[string]bool
}

func newServer(data *dataset.Dataset, logger *slog.Logger) *server {
	return &server{
		data:   data,
		logger: logger,
		tokens: make(map[string]bool),
	}
}

func (s *server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/filter_messages", s.handleFilterMessages)
		r.Post("/label", s.handleLabel)
		r.Get("/export_relevants", s.handleExport)
		r.Get("/channels", s.handleChannels)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// authMiddleware requires a bearer token previously issued by /login.
func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		ok := token != "" && s.tokens[token]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleLogin accepts any non-empty credentials and issues a session token.
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusUnauthorized, "Bad username or password")
		return
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		writeError(w, http.StatusInternalServerError, "Token generation failed")
		return
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.tokens[token] = true
	s.mu.Unlock()

	s.logger.Info("issued token", "user", req.Username)
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

// wireMessage matches the dataset column names the production API exposes.
type wireMessage struct {
	MessageID int64   `json:"Message ID"`
	Score     float64 `json:"Score"`
	URL       string  `json:"URL"`
	Label     *int    `json:"Label"`
	Embed     string  `json:"Embed"`
	Title     string  `json:"Title"`
}

func (s *server) handleFilterMessages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DateStart string   `json:"dateStart"`
		DateEnd   string   `json:"dateEnd"`
		Channel   []string `json:"channel"`
		ScoreMin  *float64 `json:"scoreMin"`
		ScoreMax  *float64 `json:"scoreMax"`
		MediaType string   `json:"mediaType"`
		SortBy    string   `json:"sortBy"`
		Page      int      `json:"page"`
		PerPage   int      `json:"per_page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	q := dataset.Query{
		DateStart: req.DateStart,
		DateEnd:   req.DateEnd,
		Channels:  req.Channel,
		ScoreMin:  req.ScoreMin,
		ScoreMax:  req.ScoreMax,
		MediaType: req.MediaType,
		SortBy:    req.SortBy,
	}
	matched, total, err := s.data.Filter(q, req.Page, req.PerPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages := make([]wireMessage, len(matched))
	for i, m := range matched {
		messages[i] = wireMessage{
			MessageID: m.ID,
			Score:     m.Score,
			URL:       m.URL,
			Label:     m.Label,
			Embed:     m.Embed,
			Title:     m.Channel,
		}
	}

	s.logger.Debug("filter", "page", req.Page, "matched", total)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"messages":       messages,
		"total_messages": total,
	})
}

func (s *server) handleLabel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MessageID int64 `json:"message_id"`
		Label     int   `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.data.Label(req.MessageID, req.Label); err != nil {
		writeError(w, http.StatusOK, err.Error())
		return
	}

	s.logger.Info("labeled", "id", req.MessageID, "label", req.Label)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	count := s.data.RelevantCount()
	s.logger.Info("export", "relevant", count)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Exported %d relevant messages", count),
	})
}

func (s *server) handleChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"channels": s.data.Channels(),
	})
}
