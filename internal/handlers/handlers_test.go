package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kisanmitra-scheme-engine/internal/models"
	"kisanmitra-scheme-engine/internal/services/catalog"
	"kisanmitra-scheme-engine/internal/services/eligibility"
	s3service "kisanmitra-scheme-engine/internal/services/s3"
)

// decode unmarshals the envelope and its data into out.
func decode(t *testing.T, resp events.APIGatewayProxyResponse, out interface{}) Response {
	t.Helper()

	var env struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env.Response
}

func newMatchHandler(t *testing.T) *MatchHandler {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return NewMatchHandler(eligibility.New(cat, eligibility.WithMetrics(nil), eligibility.WithLogger(zap.NewNop())))
}

const profileJSON = `{
	"name": "Ramesh Kumar",
	"state": "Madhya Pradesh",
	"landOwnership": "Owned",
	"landSize": 3,
	"landUnit": "Acres",
	"cropTypes": ["Wheat", "Soybean"],
	"soilType": "Black Soil",
	"irrigationType": "Tubewell",
	"annualIncome": 180000,
	"familySize": 5,
	"bankAccount": true,
	"aadhaarLinked": false
}`

// ==========================
// Match
// ==========================

func TestMatchHandler_Match(t *testing.T) {
	h := newMatchHandler(t)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/match",
		Body:       profileJSON,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])

	var data MatchResponse
	env := decode(t, resp, &data)
	assert.True(t, env.Success)
	assert.Equal(t, 6, data.TotalSchemes)
	require.Len(t, data.Results, 6)
	assert.Less(t, data.EligibleCount, 6, "PM-KISAN needs Aadhaar")
	for i := 1; i < len(data.Results); i++ {
		assert.GreaterOrEqual(t, data.Results[i-1].MatchScore, data.Results[i].MatchScore)
	}
}

func TestMatchHandler_MatchEligibleOnly(t *testing.T) {
	h := newMatchHandler(t)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodPost,
		Path:                  "/match",
		Body:                  profileJSON,
		QueryStringParameters: map[string]string{"eligible": "true"},
	})
	require.NoError(t, err)

	var data MatchResponse
	decode(t, resp, &data)
	assert.Len(t, data.Results, data.EligibleCount)
	for _, r := range data.Results {
		assert.True(t, r.IsEligible)
		assert.NotEqual(t, models.SchemeIDPMKisan, r.SchemeID())
	}
}

func TestMatchHandler_BadBody(t *testing.T) {
	h := newMatchHandler(t)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/match",
		Body:       "{not json",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, decode(t, resp, nil).Success)
}

func TestMatchHandler_Explain(t *testing.T) {
	h := newMatchHandler(t)

	body := fmt.Sprintf(`{"profile": %s, "scheme_id": %q}`, profileJSON, models.SchemeIDPMKisan)
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/explain",
		Body:       body,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data ExplainResponse
	decode(t, resp, &data)
	assert.Contains(t, data.Explanation, "❌ **Not Currently Eligible**")
	assert.Contains(t, data.Explanation, "• Aadhaar must be linked")
	require.NotNil(t, data.Result)
	assert.False(t, data.Result.IsEligible)
}

func TestMatchHandler_ExplainErrors(t *testing.T) {
	h := newMatchHandler(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing scheme", fmt.Sprintf(`{"profile": %s}`, profileJSON), http.StatusBadRequest},
		{"unknown scheme", fmt.Sprintf(`{"profile": %s, "scheme_id": "SCH-404"}`, profileJSON), http.StatusNotFound},
		{"no farmer", `{"scheme_id": "SCH-001"}`, http.StatusBadRequest},
		{"stored farmer without database", `{"farmer_id": 3, "scheme_id": "SCH-001"}`, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/explain", Body: tt.body})
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestMatchHandler_Preflight(t *testing.T) {
	h := newMatchHandler(t)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions, Path: "/match"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
}

func TestMatchHandler_StoredRequiresID(t *testing.T) {
	h := newMatchHandler(t)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/match"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ==========================
// Health
// ==========================

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	tests := []struct {
		name     string
		h        *HealthHandler
		status   int
		database string
		cache    string
	}{
		{"nothing configured", NewHealthHandlerWith(nil, nil), http.StatusOK, StatusNotConfigured, StatusNotConfigured},
		{"all connected", NewHealthHandlerWith(ok, ok), http.StatusOK, StatusConnected, StatusConnected},
		{"cache down", NewHealthHandlerWith(ok, down), http.StatusServiceUnavailable, StatusConnected, StatusDisconnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.h.Handle(context.Background(), events.APIGatewayProxyRequest{})
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var data HealthResponse
			decode(t, resp, &data)
			assert.Equal(t, tt.database, data.Database)
			assert.Equal(t, tt.cache, data.Cache)
			assert.Equal(t, "kisanmitra-scheme-engine", data.Service)
		})
	}
}

// ==========================
// Presigned URL
// ==========================

type fakePresigner struct {
	keys []string
	err  error
}

func (f *fakePresigner) GeneratePresignedUploadURL(_ context.Context, key string, contentType string, expiryMinutes int) (*s3service.PresignedURLResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, key)
	return &s3service.PresignedURLResult{
		URL:       "https://bucket.s3.amazonaws.com/" + key + "?ct=" + contentType,
		Key:       key,
		ExpiresAt: time.Now().Add(time.Duration(expiryMinutes) * time.Minute),
	}, nil
}

func TestPresignedURLHandler(t *testing.T) {
	presigner := &fakePresigner{}
	h := NewPresignedURLHandler(presigner)
	h.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		QueryStringParameters: map[string]string{"filename": "Sehore Batch.csv"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data PresignedURLResponse
	decode(t, resp, &data)
	assert.True(t, strings.HasPrefix(data.S3Key, "uploads/2025/06/01/"))
	assert.True(t, strings.HasSuffix(data.S3Key, "_Sehore_Batch.csv"))
	assert.Contains(t, data.UploadURL, "ct=text/csv")
	assert.Equal(t, 3600, data.ExpiresIn)
}

func TestPresignedURLHandler_Errors(t *testing.T) {
	h := NewPresignedURLHandler(&fakePresigner{})

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		QueryStringParameters: map[string]string{"filename": "farmers.xlsx"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	h = NewPresignedURLHandler(&fakePresigner{err: errors.New("no credentials")})
	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

// ==========================
// CSV processor
// ==========================

type fakeObjectStore struct {
	files    map[string]string
	archived []string
}

func (f *fakeObjectStore) DownloadFile(_ context.Context, key string) ([]byte, error) {
	content, ok := f.files[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return []byte(content), nil
}

func (f *fakeObjectStore) ArchiveFile(_ context.Context, key string) (string, error) {
	f.archived = append(f.archived, key)
	return s3service.ArchiveKey(key), nil
}

type fakeIngester struct {
	batches map[string]string
}

func (f *fakeIngester) IngestCSV(_ context.Context, content string, batchID string) (*models.BatchSummary, error) {
	if f.batches == nil {
		f.batches = map[string]string{}
	}
	f.batches[batchID] = content

	rows := strings.Count(strings.TrimSpace(content), "\n")
	errs := make([]string, 12)
	for i := range errs {
		errs[i] = fmt.Sprintf("line %d: bad row", i+2)
	}
	return &models.BatchSummary{BatchID: batchID, TotalFarmers: rows, Errors: errs}, nil
}

func s3Event(keys ...string) events.S3Event {
	var ev events.S3Event
	for _, k := range keys {
		rec := events.S3EventRecord{}
		rec.S3.Bucket.Name = "kisanmitra-farmer-uploads-dev"
		rec.S3.Object.Key = k
		ev.Records = append(ev.Records, rec)
	}
	return ev
}

func TestCSVProcessorHandler(t *testing.T) {
	batch := "3f2b8c1e-4d5a-4b6c-8d7e-9f0a1b2c3d4e"
	key := "uploads/2025/06/01/" + batch + "_Sehore Batch.csv"

	store := &fakeObjectStore{files: map[string]string{key: "name,state,land_size,annual_income\nA,MP,2,1000\n"}}
	ingester := &fakeIngester{}
	h := NewCSVProcessorHandler(store, ingester)

	results, err := h.Handle(context.Background(), s3Event("uploads/2025/06/01/"+batch+"_Sehore+Batch.csv", "uploads/missing.csv"))
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "CSV processed successfully", results[0].Message)
	assert.Equal(t, key, results[0].Key)
	assert.Equal(t, "processed/2025/06/01/"+batch+"_Sehore Batch.csv", results[0].ArchivedKey)
	assert.Len(t, results[0].Errors, maxReportedErrors)
	assert.Contains(t, ingester.batches, batch)

	assert.Equal(t, "CSV processing failed", results[1].Message)
	assert.Equal(t, []string{key}, store.archived)
}

func TestCSVProcessorHandler_AllFail(t *testing.T) {
	h := NewCSVProcessorHandler(&fakeObjectStore{}, &fakeIngester{})

	_, err := h.Handle(context.Background(), s3Event("uploads/a.csv"))
	assert.Error(t, err)

	results, err := h.Handle(context.Background(), events.S3Event{})
	require.NoError(t, err)
	assert.Equal(t, "No records to process", results[0].Message)
}

func TestCSVProcessorHandler_SkipsNonCSV(t *testing.T) {
	store := &fakeObjectStore{}
	h := NewCSVProcessorHandler(store, &fakeIngester{})

	result, err := h.ProcessKey(context.Background(), "uploads/readme.txt")
	require.NoError(t, err)
	assert.Equal(t, "Skipped non-CSV object", result.Message)
	assert.Empty(t, store.archived)
}
