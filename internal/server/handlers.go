package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AdeptTravel/adept-settings/internal/auth"
	"github.com/AdeptTravel/adept-settings/internal/inference"
)

// maxBody caps the generate request body.
const maxBody = 1 << 20

type handlers struct {
	deps Deps
}

type healthResp struct {
	Status string `json:"status"`
	App    string `json:"app"`
	Env    string `json:"env"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResp{Status: "ok", App: h.deps.App.Name, Env: h.deps.App.Env}
	if h.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.deps.DB.PingContext(ctx); err != nil {
			h.deps.Log.Warnw("health: database ping failed", "err", err)
			resp.Status = "degraded"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type modelEntry struct {
	Key string `json:"key"`
	ID  string `json:"id"`
}

func (h *handlers) models(w http.ResponseWriter, r *http.Request) {
	keys := h.deps.AI.ModelKeys()
	out := make([]modelEntry, 0, len(keys))
	for _, k := range keys {
		id, _ := h.deps.AI.Model(k)
		out = append(out, modelEntry{Key: k, ID: id})
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": out})
}

type generateReq struct {
	Model           string   `json:"model"`
	Prompt          string   `json:"prompt"`
	MaxOutputTokens int32    `json:"max_output_tokens"`
	Temperature     *float32 `json:"temperature"`
}

type generateResp struct {
	Text string `json:"text"`
}

func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.MaxOutputTokens < 0 {
		writeError(w, http.StatusBadRequest, "max_output_tokens must not be negative")
		return
	}

	text, err := h.deps.Generator.Generate(r.Context(), req.Model, req.Prompt, inference.Options{
		MaxOutputTokens: req.MaxOutputTokens,
		Temperature:     req.Temperature,
	})
	switch {
	case errors.Is(err, inference.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	case err != nil:
		sub, _ := auth.UserID(r.Context())
		h.deps.Log.Errorw("generate failed", "user", sub, "model", req.Model, "err", err)
		writeError(w, http.StatusBadGateway, "generation failed")
		return
	}
	writeJSON(w, http.StatusOK, generateResp{Text: text})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
