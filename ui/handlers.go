package ui

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"driftlab/domain/core"
	"driftlab/internal/compare"
	"driftlab/internal/export"
)

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	exps, err := a.repo.ListExperiments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"experiments": exps, "count": len(exps)})
}

func (a *App) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseExperimentID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	exp, err := a.repo.GetExperiment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	trials, err := a.repo.ListTrials(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"experiment": exp, "trials": trials})
}

func (a *App) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseExperimentID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	metricName := r.URL.Query().Get("metric")
	if metricName == "" {
		metricName = compare.MetricMemorization
	}
	analysis, err := a.service.AnalyzeStored(r.Context(), id, metricName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	exps, err := a.repo.ListExperiments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	reports := make([]export.ExperimentReport, 0, len(exps))
	for _, exp := range exps {
		analysis, err := a.service.AnalyzeStored(r.Context(), exp.ID, compare.MetricMemorization)
		if err != nil {
			// An experiment with too few trials is skipped, not fatal.
			log.Printf("[UI] skipping %s in report: %v", exp.ID, err)
			continue
		}
		reports = append(reports, export.ExperimentReport{Experiment: exp, Analysis: analysis})
	}

	md := export.Markdown(reports, time.Now().UTC())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(export.HTML(md))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[UI] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	case core.IsConfigError(err), core.IsInsufficientDataError(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
