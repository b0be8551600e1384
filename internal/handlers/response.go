// Package handlers provides the Lambda handlers for the scheme eligibility engine.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// corsHeaders are attached to every API Gateway response.
func corsHeaders(methods string) map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": methods,
		"Content-Type":                 "application/json",
	}
}

func jsonResponse(headers map[string]string, statusCode int, resp Response) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// errorResponse creates an error response.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	return jsonResponse(headers, statusCode, Response{
		Success: false,
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// preflight answers CORS OPTIONS requests.
func preflight(headers map[string]string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
	}
}

var (
	errOnlyCSV       = errors.New("only CSV files are allowed")
	errPresignFailed = errors.New("failed to generate upload URL")
)
