package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/pkg/id"
	"github.com/torn-watcher/internal/pkg/validate"
)

// Runner is one scheduled function.
type Runner interface {
	Run(ctx context.Context, runID string, opts domain.RunOptions) (*domain.RunSummary, error)
}

// FunctionHandler invokes scheduled functions by name.
type FunctionHandler struct {
	runners map[string]Runner
}

func NewFunctionHandler(runners map[string]Runner) *FunctionHandler {
	return &FunctionHandler{runners: runners}
}

func (h *FunctionHandler) List(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(h.runners))
	for name := range h.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	writeJSON(w, http.StatusOK, FunctionsEnvelope{Functions: names})
}

func (h *FunctionHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	runner, ok := h.runners[name]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown function %q", name))
		return
	}

	opts, err := decodeRunOptions(r.Body)
	if err != nil {
		httpError(w, err)
		return
	}

	runID := id.New()
	slog.Info("function started", "function", name, "run_id", runID, "limit", opts.Limit)
	summary, err := runner.Run(r.Context(), runID, opts)
	if err != nil {
		slog.Error("function failed", "function", name, "run_id", runID, "error", err)
		httpError(w, err)
		return
	}
	summary.Finish()
	slog.Info("function finished",
		"function", name,
		"run_id", runID,
		"processed", summary.Processed,
		"notified", summary.Notified,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"errors", len(summary.Errors),
		"duration_ms", summary.DurationMS,
	)
	writeJSON(w, http.StatusOK, summary)
}

// decodeRunOptions accepts an empty body or {"limit": n}.
func decodeRunOptions(body io.Reader) (domain.RunOptions, error) {
	var opts domain.RunOptions
	if body == nil {
		return opts, nil
	}
	if err := json.NewDecoder(body).Decode(&opts); err != nil {
		if errors.Is(err, io.EOF) {
			return opts, nil
		}
		return opts, fmt.Errorf("%w: invalid request body", domain.ErrBadRequest)
	}
	if err := validate.Struct(&opts); err != nil {
		return opts, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	return opts, nil
}
