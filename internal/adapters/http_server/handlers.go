// internal/adapters/http_server/handlers.go
package httpserver

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"award_cpp/internal/adapters/report"
	"award_cpp/internal/app"
	"award_cpp/internal/domain"
)

type Handlers struct {
	S         *app.SearchService
	Q         *app.QueryService
	Threshold float64
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type scoreResponse struct {
	Flights      []domain.FlightQuote `json:"flights"`
	TotalResults int                  `json:"total_results"`
	Analysis     analysisView         `json:"analysis"`
}

type analysisView struct {
	Priced         int     `json:"priced"`
	AverageCPP     float64 `json:"average_cpp"`
	BestCPP        float64 `json:"best_cpp"`
	WorstCPP       float64 `json:"worst_cpp"`
	Threshold      float64 `json:"threshold"`
	Recommendation string  `json:"recommendation"`
}

const maxBody = 1 << 20

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/airports", h.listAirports)
	s.mux.Post("/v1/score", h.score)
	s.mux.Route("/v1/searches", func(r chi.Router) {
		r.Post("/", h.createSearch)
		r.Get("/", h.listSearches)
		r.Get("/{id}", h.getSearch)
		r.Get("/{id}/summary", h.getSummary)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(dst)
}

func searchID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handlers) listAirports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"airports": domain.Airports})
}

func (h *Handlers) createSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	id, rep, err := h.S.Run(r.Context(), req)
	switch {
	case errors.Is(err, domain.ErrInvalidSearch):
		writeProblem(w, http.StatusBadRequest, "Invalid search", err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("search failed")
		writeProblem(w, http.StatusInternalServerError, "Search failed", "the search could not be completed")
		return
	}
	status := http.StatusOK
	if id > 0 {
		w.Header().Set("Location", fmt.Sprintf("/v1/searches/%d", id))
		status = http.StatusCreated
	}
	tagSearch(r.Context(), id, rep)
	writeJSON(w, status, rep)
}

func (h *Handlers) listSearches(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	runs, err := h.Q.ListRuns(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list runs failed")
		writeProblem(w, http.StatusInternalServerError, "Listing failed", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": runs})
}

func (h *Handlers) loadReport(w http.ResponseWriter, r *http.Request) (domain.Report, bool) {
	id, ok := searchID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return domain.Report{}, false
	}
	rep, err := h.Q.GetReport(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "search not found")
		return domain.Report{}, false
	}
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("load report failed")
		writeProblem(w, http.StatusInternalServerError, "Lookup failed", "")
		return domain.Report{}, false
	}
	return rep, true
}

func (h *Handlers) getSearch(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	id, _ := searchID(r)
	tagSearch(r.Context(), id, rep)

	etag, body := calcETagAndBody(rep)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getSearch body")
	}
}

func (h *Handlers) getSummary(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteSummary(&buf, rep, app.Analyze(rep, h.Threshold)); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Render failed", "")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// score values caller-supplied observations ({"award": [...], "cash": [...]}) without any source.
func (h *Handlers) score(w http.ResponseWriter, r *http.Request) {
	var in domain.Replay
	if err := decodeBody(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	flights := h.S.Score(in.Award, in.Cash)
	a := app.Analyze(domain.NewReport(domain.SearchRequest{}, flights), h.Threshold)
	writeJSON(w, http.StatusOK, scoreResponse{
		Flights:      flights,
		TotalResults: len(flights),
		Analysis: analysisView{
			Priced:         a.Priced,
			AverageCPP:     a.Average,
			BestCPP:        a.Best,
			WorstCPP:       a.Worst,
			Threshold:      a.Threshold,
			Recommendation: a.Recommendation,
		},
	})
}
