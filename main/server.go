package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"zplrender"
)

// maxRequestBytes - labels are a few KB of markup
const maxRequestBytes = 1 << 20

type renderRequest struct {
	Label  string            `json:"label,omitempty"` // inline markup
	Name   string            `json:"name,omitempty"`  // file inside labels_dir
	Data   map[string]string `json:"data,omitempty"`
	Format string            `json:"format,omitempty"` // png (default) or json
}

type renderResponse struct {
	Instructions json.RawMessage `json:"instructions"`
	Error        string          `json:"error,omitempty"`
}

// ---------- демон ----------

func runServer(a *app) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.logger.Info("🦌  демон слушает порт", "port", a.cfg.Server.Port)
	return srv.ListenAndServe()
}

func (a *app) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /render", a.handleRender)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (a *app) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonErr(w, http.StatusRequestEntityTooLarge, "request larger than %d bytes", tooBig.Limit)
			return
		}
		jsonErr(w, http.StatusBadRequest, "invalid json: %v", err)
		return
	}

	label := req.Label
	if strings.TrimSpace(label) == "" {
		if req.Name == "" {
			jsonErr(w, http.StatusBadRequest, "label or name is required")
			return
		}
		path, err := a.resolveLabel(req.Name)
		if err != nil {
			jsonErr(w, http.StatusBadRequest, "%v", err)
			return
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				jsonErr(w, http.StatusNotFound, "label not found: %s", req.Name)
				return
			}
			jsonErr(w, http.StatusInternalServerError, "read label: %v", err)
			return
		}
		label = string(raw)
	}

	res, err := a.render(r.Context(), label, req.Data, req.Format)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "%v", err)
		return
	}

	// a png is only returned for a complete pass
	if res.png != nil && res.err == nil {
		if err := writeBody(w, r, a.cfg.Server.Compression, "image/png", http.StatusOK, res.png); err != nil {
			a.logger.Warn("stream error", "error", err)
		}
		return
	}

	list, err := zplrender.MarshalInstructions(res.instructions)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, "encode instructions: %v", err)
		return
	}
	resp := renderResponse{Instructions: list}
	status := http.StatusOK
	if res.err != nil {
		resp.Error = res.err.Error()
		status = http.StatusUnprocessableEntity
	}
	body, _ := json.Marshal(resp)
	if err := writeBody(w, r, a.cfg.Server.Compression, "application/json; charset=utf-8", status, body); err != nil {
		a.logger.Warn("stream error", "error", err)
	}
}

func jsonErr(w http.ResponseWriter, code int, fmtStr string, a ...any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	body, _ := json.Marshal(map[string]string{"error": fmt.Sprintf(fmtStr, a...)})
	_, _ = w.Write(body)
}
