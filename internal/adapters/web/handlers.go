package web

import (
	"bufio"
	"context"
	"errors"
	"strings"

	"cinematch/internal/domain"
	"cinematch/internal/metrics"
	"cinematch/pkg/log"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

const maxQueryLength = 500

// MovieSearcher answers free-text movie queries.
type MovieSearcher interface {
	Execute(ctx context.Context, query string) (*domain.SearchResult, error)
	Stream(ctx context.Context, query string, emit func(domain.StreamEvent)) int
}

// ProviderFinder resolves streaming providers for a title.
type ProviderFinder interface {
	Execute(ctx context.Context, movieID, region string) []string
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	search    MovieSearcher
	providers ProviderFinder
	validate  *validator.Validate
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(search MovieSearcher, providers ProviderFinder) *Handlers {
	return &Handlers{
		search:    search,
		providers: providers,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

type searchRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

type errorResponse struct {
	Type    domain.ResponseType `json:"type"`
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
}

// AISearch handles POST /api/ai-search. With ?stream=1 the answer is NDJSON.
func (h *Handlers) AISearch(c *fiber.Ctx) error {
	var req searchRequest
	// The body is JSON whatever Content-Type the client sent.
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			log.GlobalWarnCtx(c.UserContext(), "invalid search body", "error", err)
			return writeError(c, fiber.StatusBadRequest, "invalid_body", "Send a JSON body like {\"query\": \"cozy movies\"}.")
		}
	}
	req.Query = strings.TrimSpace(req.Query)

	if err := h.validate.Struct(req); err != nil {
		code, message := validationError(err)
		return writeError(c, fiber.StatusBadRequest, code, message)
	}

	if c.Query("stream") == "1" {
		return h.stream(c, req.Query)
	}

	result, err := h.search.Execute(c.UserContext(), req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return writeError(c, fiber.StatusBadRequest, "missing_query", "Tell us what you feel like watching.")
		}
		log.GlobalErrorCtx(c.UserContext(), "search failed", "query", req.Query, "error", err)
		return writeError(c, fiber.StatusInternalServerError, "internal_error", "We couldn't complete this search. Please try again in a moment.")
	}

	return c.JSON(result)
}

// stream writes search events as they are produced. The work runs on a
// context detached from the request so it completes even if the client leaves.
func (h *Handlers) stream(c *fiber.Ctx, query string) error {
	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Set(fiber.HeaderCacheControl, "no-cache, no-transform")
	c.Set(fiber.HeaderConnection, "keep-alive")

	ctx := log.WithRequestID(context.Background(), log.RequestIDFromContext(c.UserContext()))
	search := h.search

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		enc := json.NewEncoder(w)
		search.Stream(ctx, query, func(event domain.StreamEvent) {
			if err := enc.Encode(event); err != nil {
				log.GlobalWarnCtx(ctx, "encode stream event", "type", event.Type, "error", err)
				return
			}
			if err := w.Flush(); err != nil {
				log.GlobalDebugCtx(ctx, "stream flush failed", "type", event.Type, "error", err)
			}
			metrics.StreamedEvents.WithLabelValues(event.Type).Inc()
		})
	})
	return nil
}

// Providers handles GET /api/movies/:id/providers.
func (h *Handlers) Providers(c *fiber.Ctx) error {
	id := c.Params("id")
	providers := h.providers.Execute(c.UserContext(), id, c.Query("region"))
	return c.JSON(fiber.Map{"id": id, "providers": providers})
}

// Health handles GET /healthz.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorResponse{
		Type:    domain.ResponseError,
		Error:   code,
		Message: message,
	})
}

// validationError maps a validator failure to an error code and a friendly message.
func validationError(err error) (string, string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
		return "query_too_long", "Keep your request under 500 characters."
	}
	return "missing_query", "Tell us what you feel like watching."
}
