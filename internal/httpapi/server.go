// Package httpapi exposes the coordination layer over HTTP: task
// assignment, message injection, status, CV upload, and the reply
// simulation hook.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/odellis/hireflow/internal/agent"
	"github.com/odellis/hireflow/internal/logger"
	"github.com/odellis/hireflow/internal/pdfextract"
	"github.com/odellis/hireflow/internal/watch"
	"go.uber.org/zap"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	maxCVUploadBytes       = 10 << 20
)

// Server wires HTTP endpoints to the coordinator and the mailbox scanner.
type Server struct {
	coordinator *agent.Coordinator
	scanner     *watch.Scanner
	extractor   *pdfextract.Extractor
	logger      *zap.Logger
	httpServer  *http.Server
}

func NewServer(addr string, coordinator *agent.Coordinator, scanner *watch.Scanner, lg *zap.Logger) *Server {
	s := &Server{
		coordinator: coordinator,
		scanner:     scanner,
		extractor:   pdfextract.New(lg),
		logger:      lg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/coordinator/start", s.handleStart)
	mux.HandleFunc("POST /api/coordinator/stop", s.handleStop)
	mux.HandleFunc("POST /api/tasks", s.handleAssignTask)
	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("POST /api/messages", s.handleSendMessage)
	mux.HandleFunc("GET /api/messages", s.handleHistory)
	mux.HandleFunc("POST /api/cv", s.handleCVUpload)
	mux.HandleFunc("POST /api/simulate/reply", s.handleSimulateReply)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler exposes the routing table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"coordinator": s.coordinator.Status(),
	}
	if s.scanner != nil {
		resp["scanner"] = map[string]any{
			"running": s.scanner.Running(),
			"stats":   s.scanner.Snapshot(),
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.coordinator.Start(r.Context())
	if s.scanner != nil {
		s.scanner.Start(r.Context())
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"running": true})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	if s.scanner != nil {
		s.scanner.Stop()
	}
	s.coordinator.Stop()
	s.writeJSON(w, http.StatusOK, map[string]bool{"running": false})
}

type assignTaskRequest struct {
	Role     agent.RoleName `json:"role"`
	TaskType string         `json:"task_type"`
	Input    map[string]any `json:"input"`
}

func (s *Server) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	var req assignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == "" || req.TaskType == "" {
		s.writeError(w, http.StatusBadRequest, "role and task_type are required")
		return
	}

	task, err := s.coordinator.AssignTask(req.Role, req.TaskType, req.Input)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"tasks": s.coordinator.Tasks()})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.coordinator.Task(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

type sendMessageRequest struct {
	From    agent.RoleName    `json:"from"`
	To      agent.RoleName    `json:"to"`
	Kind    agent.MessageKind `json:"kind"`
	Payload map[string]any    `json:"payload"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.To == "" || req.Kind == "" {
		s.writeError(w, http.StatusBadRequest, "to and kind are required")
		return
	}

	msg := s.coordinator.Send(req.From, req.To, req.Kind, req.Payload)
	s.writeJSON(w, http.StatusAccepted, msg)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"messages": s.coordinator.History(limit)})
}

// handleCVUpload accepts a PDF, extracts its text, and assigns a CV
// analysis task. Extraction failure does not reject the upload; analysis
// proceeds on an empty CV with the fallback path.
func (s *Server) handleCVUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxCVUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	candidateEmail := r.FormValue("candidate_email")
	if candidateEmail == "" {
		s.writeError(w, http.StatusBadRequest, "candidate_email is required")
		return
	}

	var cvText string
	var extraction *pdfextract.Result
	if file, _, err := r.FormFile("cv"); err == nil {
		defer file.Close()

		content, err := io.ReadAll(io.LimitReader(file, maxCVUploadBytes))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "failed to read upload")
			return
		}

		extraction = s.extractor.Extract(content)
		cvText = extraction.Text
		if !extraction.Success {
			s.logger.Warn("cv text extraction failed",
				zap.String(logger.FieldCandidate, candidateEmail),
				zap.String("reason", extraction.Error),
			)
		}
	}

	input := map[string]any{
		"candidate_email": candidateEmail,
		"cv_text":         cvText,
	}
	if position := r.FormValue("position_title"); position != "" {
		input["position_title"] = position
	}
	if jobDescription := r.FormValue("job_description"); jobDescription != "" {
		input["job_description"] = jobDescription
	}

	task, err := s.coordinator.AssignTask(agent.RoleCVAnalyzer, agent.TaskAnalyzeCV, input)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{"task": task}
	if extraction != nil {
		resp["extraction"] = extraction
	}
	s.writeJSON(w, http.StatusAccepted, resp)
}

type simulateReplyRequest struct {
	CandidateEmail string `json:"candidate_email"`
	ReplyText      string `json:"reply_text"`
}

func (s *Server) handleSimulateReply(w http.ResponseWriter, r *http.Request) {
	var req simulateReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CandidateEmail == "" || req.ReplyText == "" {
		s.writeError(w, http.StatusBadRequest, "candidate_email and reply_text are required")
		return
	}

	s.coordinator.EmailMonitor().InjectReply(r.Context(), req.CandidateEmail, req.ReplyText)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "reply injected"})
}
