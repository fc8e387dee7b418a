// Package api exposes the document bot over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thebraudalf/fnb-docbot/config"
	"github.com/thebraudalf/fnb-docbot/internal/adapter/store"
	"github.com/thebraudalf/fnb-docbot/internal/domain"
	"github.com/thebraudalf/fnb-docbot/internal/port"
	"github.com/thebraudalf/fnb-docbot/internal/usecase"
)

// maxUploadBytes bounds one multipart ingest request.
const maxUploadBytes = 64 << 20

// Server is the HTTP front end over the ingestion and query pipelines.
type Server struct {
	ingest    *usecase.IngestUseCase
	query     *usecase.QueryUseCase
	store     port.VectorStore
	registry  *store.Registry
	uploadDir string
	addr      string
}

// NewServer creates the HTTP server. registry may be nil when no upload
// ledger is configured.
func NewServer(
	ingestUC *usecase.IngestUseCase,
	queryUC *usecase.QueryUseCase,
	st port.VectorStore,
	registry *store.Registry,
	uploadDir string,
	addr string,
) *Server {
	return &Server{
		ingest:    ingestUC,
		query:     queryUC,
		store:     st,
		registry:  registry,
		uploadDir: uploadDir,
		addr:      addr,
	}
}

// Handler builds the route table. Exposed separately so tests can drive
// the mux without a listening socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ingest", s.handleIngest)
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/sources", s.handleSources)
	mux.HandleFunc("/health", s.handleHealth)
	return corsMiddleware(loggingMiddleware(mux))
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	log.Printf("[INFO] docbot server listening on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleIngest accepts up to ten multipart files, saves them to the
// upload directory, and runs them through the ingestion pipeline as one
// batch.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, domain.E(domain.KindInvalidConfiguration, "invalid multipart request: %v", err))
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, domain.E(domain.KindInvalidConfiguration, "no files uploaded"))
		return
	}
	if len(files) > usecase.MaxBatchFiles {
		writeError(w, domain.E(domain.KindInvalidConfiguration,
			"too many files: %d exceeds the limit of %d", len(files), usecase.MaxBatchFiles))
		return
	}

	paths := make([]string, 0, len(files))
	for _, header := range files {
		path, err := s.saveUpload(header)
		if err != nil {
			writeError(w, err)
			return
		}
		paths = append(paths, path)
	}

	result, err := s.ingest.IngestBatch(r.Context(), paths)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleQuery answers a question from the ingested content. The body
// may be JSON {"question": ...} or a form field.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	question := readQuestion(r)
	if question == "" {
		writeError(w, domain.E(domain.KindInvalidConfiguration, "question required"))
		return
	}

	answer, err := s.query.Answer(r.Context(), question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// handleReset drops the index, the upload registry, and the cached
// ingestion artifact.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.store.Reset(); err != nil {
		writeError(w, err)
		return
	}
	if s.registry != nil {
		if err := s.registry.Clear(); err != nil {
			writeError(w, err)
			return
		}
	}
	if err := os.Remove(config.ArtifactPath(s.uploadDir)); err != nil && !os.IsNotExist(err) {
		writeError(w, domain.Wrap(domain.KindPersistenceFailed, err, "removing ingestion artifact"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Stats())
}

// handleSources lists the per-source ingest ledger.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.registry == nil {
		writeJSON(w, http.StatusOK, []domain.SourceRecord{})
		return
	}
	records, err := s.registry.ListSources()
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []domain.SourceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// saveUpload copies one multipart file into the upload directory using
// only the base of the client-supplied name.
func (s *Server) saveUpload(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", domain.Wrap(domain.KindPersistenceFailed, err, "opening upload %q", header.Filename)
	}
	defer src.Close()

	name := filepath.Base(filepath.Clean(header.Filename))
	if name == "." || name == string(filepath.Separator) {
		return "", domain.E(domain.KindInvalidConfiguration, "invalid upload name %q", header.Filename)
	}
	path := filepath.Join(s.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", domain.Wrap(domain.KindPersistenceFailed, err, "saving upload %q", name)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", domain.Wrap(domain.KindPersistenceFailed, err, "writing upload %q", name)
	}
	return path, nil
}

func readQuestion(r *http.Request) string {
	// Content-Type may carry parameters ("application/json; charset=utf-8").
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Question string `json:"question"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		return req.Question
	}
	r.ParseForm()
	return r.FormValue("question")
}

// writeError maps a failure kind onto an HTTP status and sends a JSON
// error body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindUnsupportedFormat, domain.KindEmptyDocument, domain.KindInvalidConfiguration:
		status = http.StatusBadRequest
	case domain.KindTimeout:
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
