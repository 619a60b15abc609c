package history

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Column limits enforced on save.
const (
	MaxPromptTypeLength = 50
	MaxProviderLength   = 50
	MaxModelLength      = 100
)

// Page defaults.
const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

// ErrNotFound is returned when a history record does not exist.
var ErrNotFound = errors.New("history record not found")

// NotFoundError reports a missing record. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("History record not found: %d", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports an invalid save request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// Record is one saved prompt/response exchange.
type Record struct {
	ID              int64          `json:"id"`
	Timestamp       time.Time      `json:"timestamp"`
	PromptType      string         `json:"promptType"`
	Prompt          string         `json:"prompt"`
	Provider        string         `json:"provider"`
	Model           string         `json:"model"`
	Response        string         `json:"response"`
	TokensUsed      *int           `json:"tokensUsed"`
	ResponseTimeMs  *int64         `json:"responseTimeMs"`
	InputParameters map[string]any `json:"inputParameters"`
}

// SaveRequest is the input to Store.Save.
type SaveRequest struct {
	PromptType      string         `json:"promptType"`
	Prompt          string         `json:"prompt"`
	Provider        string         `json:"provider"`
	Model           string         `json:"model"`
	Response        string         `json:"response"`
	TokensUsed      *int           `json:"tokensUsed,omitempty"`
	ResponseTimeMs  *int64         `json:"responseTimeMs,omitempty"`
	InputParameters map[string]any `json:"inputParameters,omitempty"`
}

// Validate checks required fields and column limits.
func (r *SaveRequest) Validate() error {
	required := []struct {
		field, value, message string
	}{
		{"promptType", r.PromptType, "Prompt type is required"},
		{"prompt", r.Prompt, "Prompt is required"},
		{"provider", r.Provider, "Provider is required"},
		{"model", r.Model, "Model is required"},
		{"response", r.Response, "Response is required"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Message: f.message}
		}
	}

	limits := []struct {
		field, value string
		max          int
	}{
		{"promptType", r.PromptType, MaxPromptTypeLength},
		{"provider", r.Provider, MaxProviderLength},
		{"model", r.Model, MaxModelLength},
	}
	for _, l := range limits {
		if len(l.value) > l.max {
			return &ValidationError{
				Field:   l.field,
				Message: fmt.Sprintf("%s must be at most %d characters", l.field, l.max),
			}
		}
	}
	return nil
}

// SaveResult acknowledges a saved record.
type SaveResult struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// SortOrder orders records by timestamp.
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// ParseSortOrder returns SortAsc for "asc" (any case) and SortDesc otherwise.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// PageQuery selects one page of records. An empty PromptType matches all.
type PageQuery struct {
	PromptType string
	Page       int
	Size       int
	Sort       SortOrder
}

// Offset returns the first row of the page after size defaults and caps are
// applied. Pages whose offset does not fit in an int64 are rejected.
func (q PageQuery) Offset() (int64, error) {
	q = q.normalized()
	if int64(q.Page) > math.MaxInt64/int64(q.Size) {
		return 0, &ValidationError{Field: "page", Message: fmt.Sprintf("Page %d is out of range for size %d", q.Page, q.Size)}
	}
	return int64(q.Page) * int64(q.Size), nil
}

func (q PageQuery) normalized() PageQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	if q.Sort != SortAsc {
		q.Sort = SortDesc
	}
	return q
}

// Page is one page of records.
type Page struct {
	Content     []Record `json:"content"`
	CurrentPage int      `json:"currentPage"`
	TotalItems  int64    `json:"totalItems"`
	TotalPages  int      `json:"totalPages"`
	PageSize    int      `json:"pageSize"`
}
