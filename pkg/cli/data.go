package cli

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clinsight/reop/pkg/pipeline"
	"github.com/clinsight/reop/pkg/schema"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

type apiError struct {
	Error string        `json:"error"`
	Kind  pipeline.Kind `json:"kind,omitempty"`
	Field string        `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, e apiError) {
	writeJSON(w, status, e)
}

func schemaAPIHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, schema.Specs())
}

func predictAPIHandler(p *pipeline.Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var record map[string]int
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			writeError(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
			return
		}

		res, err := p.Predict(record)
		if err != nil {
			status := http.StatusInternalServerError
			e := apiError{Error: err.Error(), Kind: pipeline.ErrKind(err)}
			switch e.Kind {
			case pipeline.KindUnknownField, pipeline.KindOutOfRange, pipeline.KindIncompleteInput:
				status = http.StatusBadRequest
			case pipeline.KindInferenceFailure:
				slog.Error("inference failed", "error", err)
			}
			var pe *pipeline.Error
			if errors.As(err, &pe) {
				e.Field = pe.Field
			}
			writeError(w, status, e)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func importanceAPIHandler(cohort *pipeline.CohortStats) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, cohort)
	}
}
