package http

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortly/internal/entity"
)

const statusError = "error"

// shortenRequest represents the structure for a request to shorten a URL.
// CustomCode bypasses generation when present.
type shortenRequest struct {
	URL        string `json:"url" validate:"required,url"`
	CustomCode string `json:"custom_code,omitempty" validate:"omitempty,min=3,max=20,shortcode"`
}

// updateRequest represents the structure for a request to modify a URL.
type updateRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// bulkDeleteRequest lists the short codes to delete.
type bulkDeleteRequest struct {
	ShortCodes []string `json:"short_codes" validate:"required,min=1"`
}

// urlResponse represents the structure for a response containing shortened URL information.
type urlResponse struct {
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ShortURL    string    `json:"short_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// urlDetailResponse extends urlResponse with access statistics.
type urlDetailResponse struct {
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ShortURL    string    `json:"short_url"`
	AccessCount int64     `json:"access_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// urlListItem is a single element of list and search responses.
type urlListItem struct {
	ShortCode   string `json:"short_code"`
	OriginalURL string `json:"original_url"`
	ShortURL    string `json:"short_url"`
	AccessCount int64  `json:"access_count"`
}

// urlListResponse wraps a collection of URLs with its size.
type urlListResponse struct {
	Total int           `json:"total"`
	URLs  []urlListItem `json:"urls"`
}

// accessRecord pairs a short code with its access count in stats responses.
type accessRecord struct {
	ShortCode   string `json:"short_code"`
	AccessCount int64  `json:"access_count"`
}

// statsResponse represents the structure for the aggregate statistics response.
type statsResponse struct {
	TotalURLs     int            `json:"total_urls"`
	TotalAccesses int64          `json:"total_accesses"`
	MostAccessed  []accessRecord `json:"most_accessed"`
	LeastAccessed []accessRecord `json:"least_accessed"`
}

// bulkDeleteResponse reports the outcome of a bulk delete.
type bulkDeleteResponse struct {
	DeletedCount int      `json:"deleted_count"`
	FailedCodes  []string `json:"failed_codes"`
	Message      string   `json:"message"`
}

// healthResponse represents the structure for the health check response.
type healthResponse struct {
	Status    string `json:"status"`
	TotalURLs int    `json:"total_urls"`
}

func (h *urlHandler) toURLResponse(url *entity.URL) urlResponse {
	return urlResponse{
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		ShortURL:    h.shortURL(url.ShortCode),
		CreatedAt:   url.CreatedAt,
	}
}

func (h *urlHandler) toURLDetailResponse(url *entity.URL) urlDetailResponse {
	return urlDetailResponse{
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		ShortURL:    h.shortURL(url.ShortCode),
		AccessCount: url.AccessCount,
		CreatedAt:   url.CreatedAt,
	}
}

func (h *urlHandler) toURLListResponse(urls []*entity.URL) urlListResponse {
	items := make([]urlListItem, 0, len(urls))
	for _, url := range urls {
		items = append(items, urlListItem{
			ShortCode:   url.ShortCode,
			OriginalURL: url.OriginalURL,
			ShortURL:    h.shortURL(url.ShortCode),
			AccessCount: url.AccessCount,
		})
	}

	return urlListResponse{
		Total: len(items),
		URLs:  items,
	}
}

func toAccessRecords(records []entity.AccessRecord) []accessRecord {
	out := make([]accessRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, accessRecord{
			ShortCode:   rec.ShortCode,
			AccessCount: rec.AccessCount,
		})
	}
	return out
}

func toStatsResponse(stats *entity.URLStats) statsResponse {
	return statsResponse{
		TotalURLs:     stats.TotalURLs,
		TotalAccesses: stats.TotalAccesses,
		MostAccessed:  toAccessRecords(stats.MostAccessed),
		LeastAccessed: toAccessRecords(stats.LeastAccessed),
	}
}

func toBulkDeleteResponse(result *entity.BulkDeleteResult) bulkDeleteResponse {
	msg := fmt.Sprintf("Successfully deleted %d URL(s)", result.DeletedCount)
	if len(result.FailedCodes) > 0 {
		msg += fmt.Sprintf(", %d failed", len(result.FailedCodes))
	}

	failed := result.FailedCodes
	if failed == nil {
		failed = []string{}
	}

	return bulkDeleteResponse{
		DeletedCount: result.DeletedCount,
		FailedCodes:  failed,
		Message:      msg,
	}
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
	}

	urlNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "url not found",
	}

	shortCodeExistsResponse = errorResponse{
		Status:  statusError,
		Message: "short code already exists",
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	case "min":
		return "value is too short"
	case "max":
		return "value is too long"
	case "shortcode":
		return "only letters, digits, underscore and hyphen are allowed"
	default:
		return "invalid value"
	}
}

// getValidationErrors processes validation errors and returns a list of validationError.
func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse constructs an errorResponse for validation errors.
func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}
