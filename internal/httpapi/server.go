package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/insightly/internal/logging"
	"github.com/forPelevin/insightly/internal/render"
	"github.com/forPelevin/insightly/internal/types"
)

const (
	// maxUpload bounds the multipart body of /transcribe/.
	maxUpload = 64 << 20
	// maxAnalyzeBody bounds the JSON body of /analyze.
	maxAnalyzeBody = 64 << 10
)

// Service is what the HTTP surface needs from the pipeline.
type Service interface {
	Analyze(ctx context.Context, req types.StreamRequest) (*types.Report, error)
	TranscribeAudio(ctx context.Context, audio []byte) (string, error)
}

type Server struct {
	svc Service
	log *slog.Logger
}

func New(svc Service, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{svc: svc, log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transcribe/", s.handleTranscribe)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("http api listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http api: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type transcribeResponse struct {
	Transcript *string `json:"transcript"`
}

// handleTranscribe answers 200 with a null transcript when transcription
// fails; only a malformed upload is a client error.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	text, err := s.svc.TranscribeAudio(r.Context(), audio)
	if err != nil {
		s.log.Error("transcription failed", "error", err, "bytes", len(audio))
		writeJSON(w, http.StatusOK, transcribeResponse{})
		return
	}
	writeJSON(w, http.StatusOK, transcribeResponse{Transcript: &text})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.StreamRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAnalyzeBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := s.svc.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, render.NewView(rep, true))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
