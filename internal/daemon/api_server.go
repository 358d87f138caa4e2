package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"murmur/internal/audio"
	"murmur/internal/config"
	"murmur/internal/deps"
	"murmur/internal/logging"
	"murmur/internal/pipeline"
	"murmur/internal/services"
	"murmur/internal/tenants"
)

// multipartMemoryLimit bounds how much of an upload is buffered in
// memory before spilling to disk.
const multipartMemoryLimit = 8 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

type errorResponse struct {
	Error           string   `json:"error"`
	Kind            string   `json:"kind"`
	Issues          []string `json:"issues,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

type configResponse struct {
	TenantID string                      `json:"tenantId"`
	Stored   bool                        `json:"stored"`
	Config   tenants.TranscriptionConfig `json:"config"`
}

type systemInfoResponse struct {
	Dependencies []deps.Status   `json:"dependencies"`
	TempDir      deps.Status     `json:"tempDir"`
	Models       map[string]bool `json:"models"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is required")
	}

	srv := &apiServer{bind: bind, logger: logger, daemon: d}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transcribe/{tenantId}", srv.handleTranscribe)
	mux.HandleFunc("GET /config/{tenantId}", srv.handleConfigGet)
	mux.HandleFunc("PUT /config/{tenantId}", srv.handleConfigPut)
	mux.HandleFunc("GET /system-info", srv.handleSystemInfo)
	mux.HandleFunc("POST /test-audio", srv.handleTestAudio)
	mux.HandleFunc("GET /healthz", srv.handleHealthz)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenantId")
	ctx := services.WithRequestID(r.Context(), uuid.NewString())
	ctx = services.WithTenant(ctx, tenantID)

	tenantCfg, stored, err := s.daemon.store.Resolve(ctx, tenantID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !stored {
		s.writeServiceError(w, services.Wrap(services.ErrNotFound, "api", "transcribe",
			fmt.Sprintf("no configuration stored for tenant %q", tenantID), nil))
		return
	}

	file, header, err := s.uploadFile(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	defer file.Close()

	outcome, err := s.daemon.pipeline.Transcribe(ctx, pipeline.Request{
		TenantID:  tenantID,
		Filename:  header.filename,
		MIMEType:  header.mimeType,
		SizeBytes: header.size,
		Body:      file,
		Config:    tenantCfg,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *apiServer) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenantId")
	cfg, stored, err := s.daemon.store.Resolve(r.Context(), tenantID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, configResponse{TenantID: tenantID, Stored: stored, Config: cfg})
}

func (s *apiServer) handleConfigPut(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenantId")

	var cfg tenants.TranscriptionConfig
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", "invalid configuration payload: "+err.Error())
		return
	}
	if issues := cfg.Validate(); len(issues) > 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "configuration rejected",
			Kind:   "validation",
			Issues: issues,
		})
		return
	}

	stored, err := s.daemon.store.Put(r.Context(), tenantID, cfg)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, configResponse{TenantID: stored.TenantID, Stored: true, Config: stored.Config})
}

func (s *apiServer) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, systemInfoResponse{
		Dependencies: status.Dependencies,
		TempDir:      status.TempDir,
		Models:       s.daemon.ProbeModels(r.Context()),
	})
}

func (s *apiServer) handleTestAudio(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.uploadFile(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	defer file.Close()

	report, err := s.daemon.pipeline.Check(r.Context(), pipeline.Request{
		Filename:  header.filename,
		MIMEType:  header.mimeType,
		SizeBytes: header.size,
		Body:      file,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *apiServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uploadHeader struct {
	filename string
	mimeType string
	size     int64
}

// uploadFile extracts the single audio part from a multipart request.
// The body reader is capped just above the upload ceiling so oversized
// requests fail with the validator's message, not a transport error.
func (s *apiServer) uploadFile(w http.ResponseWriter, r *http.Request) (multipart.File, uploadHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, audio.MaxUploadBytes+multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return nil, uploadHeader{}, fmt.Errorf("parse multipart body: %w", err)
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		return nil, uploadHeader{}, errors.New(`multipart body must contain a single "audio" field`)
	}
	return file, uploadHeader{
		filename: header.Filename,
		mimeType: header.Header.Get("Content-Type"),
		size:     header.Size,
	}, nil
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	s.writeError(w, services.HTTPStatus(err), services.Kind(err), err.Error())
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, kind, message string) {
	s.writeJSON(w, status, errorResponse{Error: message, Kind: kind})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
