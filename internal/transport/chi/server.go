package chi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/logger"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/repository/history"
	healthuc "github.com/KAS4453/tds-virtual-ta-22f3000668/internal/usecase/health"
)

// AskService answers student questions.
type AskService interface {
	Answer(ctx context.Context, question string, image []byte) (domain.AnswerResult, error)
}

// StatsProvider reads aggregated question counters.
type StatsProvider interface {
	Stats(ctx context.Context) (history.Stats, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// IngestService stores a scraped document and indexes it.
type IngestService interface {
	Ingest(ctx context.Context, doc domain.Document) (domain.Document, error)
}

// Server exposes the question-answering API over HTTP.
type Server struct {
	ask    AskService
	stats  StatsProvider
	health HealthService
	ingest IngestService
	logger *zap.Logger
}

// NewServer creates an HTTP API server. stats may be nil.
func NewServer(ask AskService, stats StatsProvider, health HealthService, ingest IngestService, logger *zap.Logger) *Server {
	return &Server{ask: ask, stats: stats, health: health, ingest: ingest, logger: logger}
}

// Mount registers the API routes on the router.
func (s *Server) Mount(r chi.Router) {
	r.Post("/api/", s.handleAsk)
	r.Post("/api/documents", s.handleIngestDocument)
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/stats", s.handleStats)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

type askRequest struct {
	Question string `json:"question"`
	Image    string `json:"image"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	var image []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid base64 image data")
			return
		}
		image = decoded
	}

	result, err := s.ask.Answer(r.Context(), req.Question, image)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuestion) {
			writeError(w, http.StatusBadRequest, "Question is required")
			return
		}
		s.reqLogger(r).Error("Answer pipeline failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type ingestRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type ingestResponse struct {
	ID          int64 `json:"id"`
	EmbeddingID int64 `json:"embedding_id"`
}

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	doc, err := s.ingest.Ingest(r.Context(), domain.Document{
		URL:      req.URL,
		Title:    req.Title,
		Body:     req.Content,
		Category: domain.Category(req.Category),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDocument):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrDocumentExists):
			writeError(w, http.StatusConflict, "Document with this URL already exists")
		default:
			s.reqLogger(r).Error("Document ingest failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{ID: doc.ID, EmbeddingID: doc.EmbeddingID})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status":     string(report.Status),
		"ai_enabled": report.AIEnabled,
		"checks":     report.Checks,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusNotFound, "Statistics are not enabled")
		return
	}

	stats, err := s.stats.Stats(r.Context())
	if err != nil {
		s.reqLogger(r).Error("Stats read failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	stats.AverageResponseTime = math.Round(stats.AverageResponseTime*100) / 100
	writeJSON(w, http.StatusOK, stats)
}

// reqLogger prefers the request-scoped logger placed in the context by
// the wide-event middleware.
func (s *Server) reqLogger(r *http.Request) *zap.Logger {
	return logger.FromContextOr(r.Context(), s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
