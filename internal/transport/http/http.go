// Package http implements the HTTP/WebSocket transport for jarvis.
//
// This transport exposes a REST API for stateless command submission and
// confirmation, and mounts the session hub on /ws for clients that keep a
// persistent connection.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/jarvis/internal/history"
	"github.com/nadzzz/jarvis/internal/message"
	"github.com/nadzzz/jarvis/internal/transport"
)

const maxBodyBytes = 64 << 10

// HistoryReader lists recorded commands.
type HistoryReader interface {
	Recent(ctx context.Context, q history.Query) ([]history.Entry, error)
}

// Options configures the HTTP transport.
type Options struct {
	Port    int
	Service transport.Service

	// Sessions serves GET /ws. Nil disables the websocket endpoint.
	Sessions http.Handler

	// History serves GET /api/history. Nil disables it.
	History      HistoryReader
	HistoryLimit int
}

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	opts   Options
	server *http.Server
}

// New creates a new HTTP transport.
func New(opts Options) *Transport {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	return &Transport{opts: opts}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns the routed mux.
func (t *Transport) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/command", t.handleCommand)
	mux.HandleFunc("POST /api/confirm/{id}", t.handleConfirm)
	mux.HandleFunc("GET /api/system/status", t.handleStatus)
	mux.HandleFunc("GET /api/history", t.handleHistory)

	if t.opts.Sessions != nil {
		mux.Handle("GET /ws", t.opts.Sessions)
	}

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// Listen starts the HTTP server. It blocks until the context is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.opts.Port),
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.opts.Port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleCommand processes a POST /api/command request.
//
// @Summary     Process a command
// @Description Runs one English, Hindi or Hinglish utterance through the command pipeline.
// @Description Dangerous commands are not executed; the response carries a confirmation_id to
// @Description approve or reject through /api/confirm/{id}.
// @Tags        commands
// @Accept      json
// @Produce     json
// @Param       request  body      message.CommandRequest   true  "Command text and optional language hint"
// @Success     200      {object}  message.CommandResponse  "Outcome of the command"
// @Failure     400      {object}  errorBody                "Invalid request body"
// @Router      /api/command [post]
func (t *Transport) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req message.CommandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	reply := t.opts.Service.Handle(r.Context(), transport.Request("http", req))
	writeJSON(w, http.StatusOK, reply.Response)
}

type confirmBody struct {
	Approved bool `json:"approved"`
}

// handleConfirm processes a POST /api/confirm/{id} request.
//
// @Summary     Approve or reject a dangerous command
// @Description Resolves a pending confirmation. Approval executes the parked command and
// @Description returns its result. Unknown ids and ids that were already resolved are 404.
// @Tags        commands
// @Accept      json
// @Produce     json
// @Param       id       path      string                 true  "Confirmation id"
// @Param       request  body      confirmBody            true  "Decision"
// @Success     200      {object}  message.ConfirmResult  "Decision applied"
// @Failure     400      {object}  errorBody              "Invalid request body"
// @Failure     404      {object}  message.ConfirmResult  "Unknown or already resolved confirmation"
// @Router      /api/confirm/{id} [post]
func (t *Transport) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var body confirmBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	res, err := t.opts.Service.Confirm(r.Context(), r.PathValue("id"), body.Approved)
	switch {
	case transport.IsGone(err):
		writeJSON(w, http.StatusNotFound, message.ConfirmResult{Success: false, Message: err.Error()})
	case err != nil:
		slog.Error("confirm failed", "confirmation_id", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

// handleStatus processes a GET /api/system/status request.
//
// @Summary     System status
// @Description Returns the automation host's current monitoring snapshot.
// @Tags        system
// @Produce     json
// @Success     200  {object}  map[string]any  "Snapshot"
// @Failure     503  {object}  errorBody       "Automation host unavailable"
// @Router      /api/system/status [get]
func (t *Transport) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := t.opts.Service.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleHistory processes a GET /api/history request.
//
// @Summary     Command history
// @Description Lists recently processed commands, newest first. Sensitive text is redacted.
// @Tags        system
// @Produce     json
// @Param       limit       query     int     false  "Maximum rows"
// @Param       session_id  query     string  false  "Only this session"
// @Success     200  {array}   history.Entry
// @Failure     400  {object}  errorBody  "Invalid limit"
// @Failure     404  {object}  errorBody  "History disabled"
// @Router      /api/history [get]
func (t *Transport) handleHistory(w http.ResponseWriter, r *http.Request) {
	if t.opts.History == nil {
		writeError(w, http.StatusNotFound, "history disabled")
		return
	}

	q := history.Query{SessionID: r.URL.Query().Get("session_id"), Limit: t.opts.HistoryLimit}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		q.Limit = n
	}

	entries, err := t.opts.History.Recent(r.Context(), q)
	if err != nil {
		slog.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
