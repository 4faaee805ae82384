package handler

import "github.com/storefront/backend/internal/interfaces/http/dto"

// APIResponse is dto.Response with a typed data field, for API docs and typed clients
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse = APIResponse[any]
