package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"kisanmitra-scheme-engine/internal/handlers"
	"kisanmitra-scheme-engine/internal/models"
	"kisanmitra-scheme-engine/internal/services/catalog"
	"kisanmitra-scheme-engine/internal/services/eligibility"
	"kisanmitra-scheme-engine/internal/services/matcher"
	"kisanmitra-scheme-engine/internal/utils"
)

// maxUploadBytes bounds multipart CSV uploads.
const maxUploadBytes = 10 << 20

// Server holds all dependencies
type Server struct {
	svc       *eligibility.Service
	health    *handlers.HealthHandler
	presigner *handlers.PresignedURLHandler
}

// Response represents a standard API response
type Response = handlers.Response

// SchemesResponse is the scheme explorer payload.
type SchemesResponse struct {
	Schemes    []*models.Scheme `json:"schemes"`
	Ministries []string         `json:"ministries"`
	Categories []string         `json:"categories"`
}

// PresignedURLRequest represents the request for presigned URL
type PresignedURLRequest struct {
	Filename string `json:"filename"`
}

// FarmerCreated is returned after registering a farmer.
type FarmerCreated struct {
	ID int64 `json:"id"`
}

// routes builds the CORS-wrapped handler.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/api/health", s.healthHandler)

	mux.HandleFunc("/api/schemes", s.schemesHandler)
	mux.HandleFunc("/api/match", s.matchHandler)
	mux.HandleFunc("/api/explain", s.explainHandler)

	mux.HandleFunc("/api/farmers", s.farmersHandler)
	mux.HandleFunc("/api/farmers/matches", s.farmerMatchesHandler)

	mux.HandleFunc("/api/upload", s.uploadHandler)
	mux.HandleFunc("/api/presigned-url", s.presignedURLHandler)

	mux.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := s.health.Check(r.Context())

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, Response{
		Success: code == http.StatusOK,
		Message: "KisanMitra scheme engine is running",
		Data:    status,
	})
}

func (s *Server) schemesHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	schemes, err := s.svc.Schemes(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Schemes may come from the database; index them the same way as the
	// bundled catalog.
	cat, err := catalog.New(schemes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	q := r.URL.Query()
	if id := q.Get("id"); id != "" {
		scheme, err := cat.Get(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Response{Success: true, Data: scheme})
		return
	}

	filter := models.SchemeFilter{
		Query:    q.Get("query"),
		Ministry: q.Get("ministry"),
		Category: q.Get("category"),
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: SchemesResponse{
			Schemes:    cat.Filter(filter),
			Ministries: cat.Ministries(),
			Categories: cat.Categories(),
		},
	})
}

func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	var profile models.FarmerProfile
	if !decodeJSON(w, r, &profile) {
		return
	}

	results, err := s.svc.MatchProfile(r.Context(), &profile)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    newMatchResponse(0, results, eligibleOnly(r)),
	})
}

func (s *Server) explainHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	var req handlers.ExplainRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SchemeID == "" {
		writeError(w, http.StatusBadRequest, "scheme_id is required")
		return
	}

	if req.Profile == nil {
		if req.FarmerID <= 0 {
			writeError(w, http.StatusBadRequest, "profile or farmer_id is required")
			return
		}
		text, err := s.svc.ExplainFarmerScheme(r.Context(), req.FarmerID, req.SchemeID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Response{Success: true, Data: handlers.ExplainResponse{Explanation: text}})
		return
	}

	result, text, err := s.svc.ExplainProfileScheme(r.Context(), req.Profile, req.SchemeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    handlers.ExplainResponse{Result: &result, Explanation: text},
	})
}

func (s *Server) farmersHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var farmers []*models.FarmerProfile
		var err error
		if batchID := r.URL.Query().Get("batch_id"); batchID != "" {
			farmers, err = s.svc.BatchFarmers(r.Context(), batchID)
		} else {
			farmers, err = s.svc.ListFarmers(r.Context())
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Response{Success: true, Data: farmers})

	case http.MethodPost:
		var profile models.FarmerProfile
		if !decodeJSON(w, r, &profile) {
			return
		}
		id, err := s.svc.RegisterFarmer(r.Context(), &profile)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, Response{
			Success: true,
			Message: "Farmer registered",
			Data:    FarmerCreated{ID: id},
		})

	case http.MethodDelete:
		id, ok := farmerIDParam(w, r)
		if !ok {
			return
		}
		if err := s.svc.RemoveFarmer(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Response{Success: true, Message: "Farmer removed"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) farmerMatchesHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	id, ok := farmerIDParam(w, r)
	if !ok {
		return
	}

	_, results, err := s.svc.MatchFarmer(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    newMatchResponse(id, results, eligibleOnly(r)),
	})
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	logger := utils.GetLogger()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Only CSV files are allowed")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	check := utils.ValidateCSVStructure(string(content))
	if len(check.MissingColumns) > 0 || check.RowCount == 0 {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "CSV structure is invalid",
			Data:    check,
		})
		return
	}

	batchID := uuid.New().String()
	logger.Info("CSV upload received",
		utils.String("file", header.Filename),
		utils.String("batch_id", batchID),
		utils.Int64("bytes", header.Size))

	summary, err := s.svc.IngestCSV(r.Context(), string(content), batchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if summary.TotalFarmers == 0 {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: "No valid farmers found in CSV",
			Data:    summary,
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "CSV processed successfully",
		Data:    summary,
	})
}

func (s *Server) presignedURLHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	if s.presigner == nil {
		writeError(w, http.StatusServiceUnavailable, "S3 storage is not configured")
		return
	}

	var req PresignedURLRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, status, err := s.presigner.Presign(r.Context(), req.Filename)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: resp})
}

func newMatchResponse(farmerID int64, results []models.MatchResult, onlyEligible bool) handlers.MatchResponse {
	eligible := matcher.EligibleOnly(results)

	resp := handlers.MatchResponse{
		FarmerID:      farmerID,
		TotalSchemes:  len(results),
		EligibleCount: len(eligible),
		Results:       results,
	}
	if onlyEligible {
		resp.Results = eligible
	}
	return resp
}

func farmerIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Query parameter id must be a positive integer")
		return 0, false
	}
	return id, true
}

func eligibleOnly(r *http.Request) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get("eligible"))
	return err == nil && b
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeServiceError maps service errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, models.ErrFarmerNotFound), errors.Is(err, models.ErrSchemeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, eligibility.ErrNoFarmerStore):
		status = http.StatusServiceUnavailable
	case isValidationError(err):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	default:
		utils.GetLogger().Error("Request failed", utils.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeError(w, status, err.Error())
}

func isValidationError(err error) bool {
	for _, target := range []error{
		models.ErrEmptyFarmerName,
		models.ErrInvalidAge,
		models.ErrInvalidLandSize,
		models.ErrInvalidLandUnit,
		models.ErrInvalidIncome,
		models.ErrInvalidFamilySize,
		models.ErrInvalidEmail,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		utils.GetLogger().Warn("Failed to write response", utils.Error(err))
	}
}

// newServer wires the HTTP handlers over the service.
func newServer(svc *eligibility.Service, health *handlers.HealthHandler, presigner *handlers.PresignedURLHandler) *Server {
	return &Server{svc: svc, health: health, presigner: presigner}
}
