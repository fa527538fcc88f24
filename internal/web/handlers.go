package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/salvageops/yardbook/internal/importer"
	"github.com/salvageops/yardbook/internal/schema"
)

// importResponse is the body returned by a completed import run.
type importResponse struct {
	*importer.ImportReport
	Summary string `json:"summary"`
}

// handleImport processes a staged CSV upload. The stage key selects the
// header mapping and merge policy; optional start/end form values window
// the run to an inclusive 1-based row range for batched files.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	stageKey := chi.URLParam(r, "stage")

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondBadRequest(w, r, "invalid_form", "file too large or invalid form")
		return
	}

	file, _, err := r.FormFile("csv_file")
	if err != nil {
		s.respondBadRequest(w, r, "missing_file", "no csv_file provided")
		return
	}
	defer file.Close()

	window, err := windowFromForm(r)
	if err != nil {
		s.respondBadRequest(w, r, "invalid_window", err.Error())
		return
	}

	report, err := s.imports.Run(r.Context(), stageKey, file, window)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{ImportReport: report, Summary: report.Summary()})
}

// stageInfo describes one configured import stage for discovery clients.
type stageInfo struct {
	Key    string   `json:"key"`
	Source string   `json:"source"`
	Fields []string `json:"fields"`
}

// handleListStages returns the known import stages and their canonical
// field lists.
func (s *Server) handleListStages(w http.ResponseWriter, r *http.Request) {
	stages := schema.Stages()
	out := make([]stageInfo, 0, len(stages))
	for _, st := range stages {
		out = append(out, stageInfo{
			Key:    st.Key,
			Source: st.Source,
			Fields: st.FieldKeys(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"stages": out})
}

// vehicleResponse is a vehicle record with its merged metadata bag.
type vehicleResponse struct {
	Vehicle *importer.Vehicle `json:"vehicle"`
	Metas   map[string]string `json:"metas"`
}

// handleGetVehicle returns one vehicle with its metadata.
func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "vehicleID"))
	if err != nil {
		s.respondBadRequest(w, r, "invalid_id", "vehicle ID must be a UUID")
		return
	}

	vehicle, err := s.vehicles.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	metas, err := s.metas.Map(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, vehicleResponse{Vehicle: vehicle, Metas: metas})
}

// handleDeleteVehicle removes a vehicle and its metadata. Administrative
// only; the import pipeline never deletes.
func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "vehicleID"))
	if err != nil {
		s.respondBadRequest(w, r, "invalid_id", "vehicle ID must be a UUID")
		return
	}

	if err := s.vehicles.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDuplicateVINs reports VINs held by more than one record.
func (s *Server) handleDuplicateVINs(w http.ResponseWriter, r *http.Request) {
	dupes, err := s.vehicles.DuplicateVINs(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"duplicates": dupes})
}

// handleLotStatus proxies a live lot-details lookup to the auction site.
func (s *Server) handleLotStatus(w http.ResponseWriter, r *http.Request) {
	lotNumber := chi.URLParam(r, "lotNumber")
	if lotNumber == "" {
		s.respondBadRequest(w, r, "missing_lot", "missing lot number")
		return
	}

	details, err := s.lots.LotDetails(r.Context(), lotNumber)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(details); err != nil {
		slog.Error("lot status write error", "error", err)
	}
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// windowFromForm parses the optional start/end form values into a row
// window. Absent or blank values leave the window inactive.
func windowFromForm(r *http.Request) (importer.RowWindow, error) {
	var window importer.RowWindow

	parse := func(name string) (int, error) {
		raw := r.FormValue(name)
		if raw == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%s must be a non-negative integer", name)
		}
		return n, nil
	}

	start, err := parse("start")
	if err != nil {
		return window, err
	}
	end, err := parse("end")
	if err != nil {
		return window, err
	}

	window.Start = start
	window.End = end
	return window, nil
}
