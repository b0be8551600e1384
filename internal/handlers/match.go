package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"kisanmitra-scheme-engine/internal/models"
	"kisanmitra-scheme-engine/internal/services/eligibility"
	"kisanmitra-scheme-engine/internal/services/matcher"
	"kisanmitra-scheme-engine/internal/utils"
)

// ExplainRequest is the body of an explain request. Either an inline
// profile or a stored farmer id selects the farmer.
type ExplainRequest struct {
	Profile  *models.FarmerProfile `json:"profile"`
	FarmerID int64                 `json:"farmer_id,omitempty"`
	SchemeID string                `json:"scheme_id"`
}

// MatchResponse carries ranked results for a profile.
type MatchResponse struct {
	FarmerID      int64                `json:"farmer_id,omitempty"`
	TotalSchemes  int                  `json:"total_schemes"`
	EligibleCount int                  `json:"eligible_count"`
	Results       []models.MatchResult `json:"results"`
}

// ExplainResponse carries one scheme result and its rendered explanation.
type ExplainResponse struct {
	Result      *models.MatchResult `json:"result,omitempty"`
	Explanation string              `json:"explanation"`
}

// MatchHandler serves the match and explain endpoints through API Gateway.
type MatchHandler struct {
	svc *eligibility.Service
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(svc *eligibility.Service) *MatchHandler {
	return &MatchHandler{svc: svc}
}

// Handle routes POST /match and POST /explain.
func (h *MatchHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("GET,POST,OPTIONS")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}

	switch {
	case strings.HasSuffix(request.Path, "/explain"):
		if request.HTTPMethod != http.MethodPost {
			return errorResponse(headers, http.StatusMethodNotAllowed, "Use POST")
		}
		return h.explain(ctx, headers, request)
	case request.HTTPMethod == http.MethodGet:
		return h.matchStored(ctx, headers, request)
	case request.HTTPMethod == http.MethodPost:
		return h.match(ctx, headers, request)
	default:
		return errorResponse(headers, http.StatusMethodNotAllowed, "Use GET or POST")
	}
}

// match ranks the schemes for a profile in the request body.
func (h *MatchHandler) match(ctx context.Context, headers map[string]string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var profile models.FarmerProfile
	if err := json.Unmarshal([]byte(request.Body), &profile); err != nil {
		return errorResponse(headers, http.StatusBadRequest, "Invalid farmer profile: "+err.Error())
	}

	results, err := h.svc.MatchProfile(ctx, &profile)
	if err != nil {
		utils.GetLogger().Error("Failed to match profile", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to match schemes")
	}

	return jsonResponse(headers, http.StatusOK, Response{
		Success: true,
		Data:    buildMatchResponse(0, results, eligibleOnlyParam(request.QueryStringParameters["eligible"])),
	})
}

// matchStored ranks the schemes for a stored farmer (?id=).
func (h *MatchHandler) matchStored(ctx context.Context, headers map[string]string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id, err := strconv.ParseInt(request.QueryStringParameters["id"], 10, 64)
	if err != nil || id <= 0 {
		return errorResponse(headers, http.StatusBadRequest, "Query parameter id must be a positive integer")
	}

	_, results, err := h.svc.MatchFarmer(ctx, id)
	if err != nil {
		return serviceError(headers, err)
	}

	return jsonResponse(headers, http.StatusOK, Response{
		Success: true,
		Data:    buildMatchResponse(id, results, eligibleOnlyParam(request.QueryStringParameters["eligible"])),
	})
}

func (h *MatchHandler) explain(ctx context.Context, headers map[string]string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req ExplainRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if req.SchemeID == "" {
		return errorResponse(headers, http.StatusBadRequest, "scheme_id is required")
	}

	if req.Profile == nil {
		if req.FarmerID <= 0 {
			return errorResponse(headers, http.StatusBadRequest, "profile or farmer_id is required")
		}
		text, err := h.svc.ExplainFarmerScheme(ctx, req.FarmerID, req.SchemeID)
		if err != nil {
			return serviceError(headers, err)
		}
		return jsonResponse(headers, http.StatusOK, Response{Success: true, Data: ExplainResponse{Explanation: text}})
	}

	result, text, err := h.svc.ExplainProfileScheme(ctx, req.Profile, req.SchemeID)
	if err != nil {
		return serviceError(headers, err)
	}

	return jsonResponse(headers, http.StatusOK, Response{
		Success: true,
		Data:    ExplainResponse{Result: &result, Explanation: text},
	})
}

func buildMatchResponse(farmerID int64, results []models.MatchResult, eligibleOnly bool) MatchResponse {
	resp := MatchResponse{
		FarmerID:     farmerID,
		TotalSchemes: len(results),
		Results:      results,
	}
	for _, r := range results {
		if r.IsEligible {
			resp.EligibleCount++
		}
	}
	if eligibleOnly {
		resp.Results = matcher.EligibleOnly(results)
	}
	return resp
}

func eligibleOnlyParam(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// serviceError maps service errors to HTTP status codes.
func serviceError(headers map[string]string, err error) (events.APIGatewayProxyResponse, error) {
	switch {
	case errors.Is(err, models.ErrFarmerNotFound), errors.Is(err, models.ErrSchemeNotFound):
		return errorResponse(headers, http.StatusNotFound, err.Error())
	case errors.Is(err, eligibility.ErrNoFarmerStore):
		return errorResponse(headers, http.StatusServiceUnavailable, err.Error())
	default:
		utils.GetLogger().Error("Request failed", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Internal error")
	}
}
