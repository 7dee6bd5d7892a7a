package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortly/internal/entity"
	"github.com/vadimbarashkov/shortly/internal/metrics"
)

var shortCodeRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type urlUseCase interface {
	ShortenURL(ctx context.Context, originalURL, customCode string) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	GetURLDetails(ctx context.Context, shortCode string) (*entity.URL, error)
	ModifyURL(ctx context.Context, shortCode, originalURL string) (*entity.URL, error)
	DeactivateURL(ctx context.Context, shortCode string) error
	BulkDeactivate(ctx context.Context, shortCodes []string) (*entity.BulkDeleteResult, error)
	ListURLs(ctx context.Context) ([]*entity.URL, error)
	SearchURLs(ctx context.Context, query string) ([]*entity.URL, error)
	GetStats(ctx context.Context) (*entity.URLStats, error)
	CountURLs(ctx context.Context) int
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	metrics  *metrics.Metrics
	baseURL  string
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate, m *metrics.Metrics, baseURL string) *urlHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// RegisterValidation only errors on an empty tag name.
	_ = validate.RegisterValidation("shortcode", func(fl validator.FieldLevel) bool {
		return shortCodeRe.MatchString(fl.Field().String())
	})

	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		metrics:  m,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (h *urlHandler) shortURL(shortCode string) string {
	return h.baseURL + "/" + shortCode
}

// shortenURL handles POST /api/urls.
func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), req.URL, req.CustomCode)
	if err != nil {
		if errors.Is(err, entity.ErrShortCodeExists) {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, shortCodeExistsResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	h.metrics.URLsCreated.Inc()
	if req.CustomCode != "" {
		h.metrics.CustomCodeURLs.Inc()
	}
	h.metrics.TotalURLs.Set(float64(h.useCase.CountURLs(r.Context())))
	h.metrics.CreationDuration.Observe(time.Since(start).Seconds())

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.toURLResponse(url))
}

// redirect handles GET /{shortCode}: it resolves the code, records the access
// and sends the client to the original URL.
func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			h.metrics.URLsNotFound.Inc()

			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	h.metrics.URLsAccessed.WithLabelValues(shortCode).Inc()
	h.metrics.RedirectDuration.Observe(time.Since(start).Seconds())

	http.Redirect(w, r, url.OriginalURL, http.StatusFound)
}

// getURLDetails handles GET /api/urls/{shortCode}. It never increments the
// access count.
func (h *urlHandler) getURLDetails(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.GetURLDetails(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.toURLDetailResponse(url))
}

// listURLs handles GET /api/urls.
func (h *urlHandler) listURLs(w http.ResponseWriter, r *http.Request) {
	urls, err := h.useCase.ListURLs(r.Context())
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.toURLListResponse(urls))
}

// modifyURL handles PUT /api/urls/{shortCode}.
func (h *urlHandler) modifyURL(w http.ResponseWriter, r *http.Request) {
	var req updateRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.ModifyURL(r.Context(), shortCode, req.URL)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.toURLResponse(url))
}

// deactivateURL handles DELETE /api/urls/{shortCode}.
func (h *urlHandler) deactivateURL(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	err := h.useCase.DeactivateURL(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	h.metrics.URLsDeleted.Inc()
	h.metrics.TotalURLs.Set(float64(h.useCase.CountURLs(r.Context())))

	w.WriteHeader(http.StatusNoContent)
}

// bulkDelete handles POST /api/urls/bulk-delete. Missing codes are reported
// in the response, not as an error status.
func (h *urlHandler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	result, err := h.useCase.BulkDeactivate(r.Context(), req.ShortCodes)
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	if result.DeletedCount > 0 {
		h.metrics.URLsDeleted.Add(float64(result.DeletedCount))
		h.metrics.TotalURLs.Set(float64(h.useCase.CountURLs(r.Context())))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toBulkDeleteResponse(result))
}

// getStats handles GET /api/stats.
func (h *urlHandler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.useCase.GetStats(r.Context())
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toStatsResponse(stats))
}

// searchURLs handles GET /api/search?q=. A missing or empty query matches
// every entry.
func (h *urlHandler) searchURLs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	urls, err := h.useCase.SearchURLs(r.Context(), query)
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.toURLListResponse(urls))
}

// health handles GET /health.
func (h *urlHandler) health(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, healthResponse{
		Status:    "ok",
		TotalURLs: h.useCase.CountURLs(r.Context()),
	})
}
