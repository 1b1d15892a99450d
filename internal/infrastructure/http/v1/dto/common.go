// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"beercatalog/internal/domain/beer"
)

// ErrorResponse is the body rendered for every failed request.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// HistoryResponse wraps the change history of one beer.
type HistoryResponse struct {
	Items []beer.HistoryEntry `json:"items"`
}
