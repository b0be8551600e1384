package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	s3service "kisanmitra-scheme-engine/internal/services/s3"
	"kisanmitra-scheme-engine/internal/utils"
)

// uploadExpiryMinutes is how long a presigned upload URL stays valid.
const uploadExpiryMinutes = 60

// UploadPresigner issues presigned upload URLs.
type UploadPresigner interface {
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiryMinutes int) (*s3service.PresignedURLResult, error)
}

// PresignedURLHandler handles requests for generating presigned S3 URLs.
type PresignedURLHandler struct {
	presigner UploadPresigner
	now       func() time.Time
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler(presigner UploadPresigner) *PresignedURLHandler {
	return &PresignedURLHandler{presigner: presigner, now: time.Now}
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
	ExpiresIn int    `json:"expiresIn"`
}

// Handle processes the API Gateway request for generating presigned URLs.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("GET,POST,OPTIONS")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}

	resp, status, err := h.Presign(ctx, request.QueryStringParameters["filename"])
	if err != nil {
		return errorResponse(headers, status, err.Error())
	}

	return jsonResponse(headers, http.StatusOK, Response{Success: true, Data: resp})
}

// Presign validates the file name and issues an upload URL. On failure it
// returns the HTTP status to report.
func (h *PresignedURLHandler) Presign(ctx context.Context, filename string) (*PresignedURLResponse, int, error) {
	logger := utils.GetLogger()

	if filename == "" {
		filename = "farmers.csv"
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, http.StatusBadRequest, errOnlyCSV
	}

	key := s3service.UploadKey(filename, h.now())

	result, err := h.presigner.GeneratePresignedUploadURL(ctx, key, s3service.CSVContentType, uploadExpiryMinutes)
	if err != nil {
		logger.Error("Failed to generate presigned URL", utils.Error(err))
		return nil, http.StatusInternalServerError, errPresignFailed
	}

	logger.Info("Generated presigned URL", utils.String("s3Key", key))

	return &PresignedURLResponse{
		UploadURL: result.URL,
		S3Key:     result.Key,
		ExpiresIn: uploadExpiryMinutes * 60,
	}, http.StatusOK, nil
}
