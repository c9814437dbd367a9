// Package mcp exposes the retrieval engine over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"

	scouterr "github.com/codescout-mcp/codescout/internal/errors"
)

// Custom MCP error codes for codescout.
const (
	// ErrCodeScope indicates a path resolved outside the configured roots.
	ErrCodeScope = -32001

	// ErrCodeNotFound indicates a referenced project or file is absent.
	ErrCodeNotFound = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// ErrCodeIndexLocked indicates another process holds the index.
	ErrCodeIndexLocked = -32004

	// ErrCodePersistence indicates the index store failed.
	ErrCodePersistence = -32005

	// Standard JSON-RPC error codes.
	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError is an MCP protocol error with code and message. Every operation
// crosses the tool boundary as a tagged success or a tagged error outcome,
// never as an opaque fault.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var scoutErr *scouterr.ScoutError
	if errors.As(err, &scoutErr) {
		return mapScoutError(scoutErr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

func mapScoutError(err *scouterr.ScoutError) *MCPError {
	switch err.Code {
	case scouterr.ErrCodeOutOfScope, scouterr.ErrCodeInvalidPath:
		return &MCPError{Code: ErrCodeScope, Message: err.Message}
	case scouterr.ErrCodeProjectNotFound, scouterr.ErrCodeFileNotFound:
		return &MCPError{Code: ErrCodeNotFound, Message: err.Message}
	case scouterr.ErrCodeInvalidInput, scouterr.ErrCodeInvalidQuery:
		return &MCPError{Code: ErrCodeInvalidParams, Message: err.Message}
	case scouterr.ErrCodeIndexLocked:
		return &MCPError{Code: ErrCodeIndexLocked, Message: err.Message}
	case scouterr.ErrCodeCorruptIndex, scouterr.ErrCodeIndexFailed:
		return &MCPError{Code: ErrCodePersistence, Message: err.Message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: err.Message}
	}
}

// NewInvalidParamsError creates an error for invalid parameters.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}
