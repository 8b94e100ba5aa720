package server

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"travelbuddy/internal/middleware"
	"travelbuddy/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPaginationLimit = 20
	maxPaginationLimit     = 100
)

// parsePagination extracts limit, offset and sorting query parameters.
func parsePagination(c *fiber.Ctx, defaultLimit int) models.ListOptions {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	// page is accepted as an alternative to offset
	if page := c.QueryInt("page", 0); page > 1 && c.Query("offset") == "" {
		offset = (page - 1) * limit
	}

	sortOrder := strings.ToLower(c.Query("sortOrder", c.Query("sort_order")))
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	return models.ListOptions{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sortBy", c.Query("sort_by")),
		SortOrder: sortOrder,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "planId" -> "plan ID", "travelBuddyId" -> "travel buddy ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// identity returns the authenticated caller. Routes using it sit behind AuthRequired.
func identity(c *fiber.Ctx) models.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

// respond maps a service error onto its HTTP status.
func respond(c *fiber.Ctx, err error) error {
	if models.HTTPStatus(err) == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"path", c.Path(), "error", err)
	}
	return models.RespondWithAppError(c, err)
}

// parseBody decodes the JSON body into dst, writing a 400 on failure.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, models.NewValidationError(key + " must be a number")
	}
	return &v, nil
}

func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, models.NewValidationError(key + " must be true or false")
	}
	return &v, nil
}

// queryDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, models.NewValidationError(key + " must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, raw)
}

// paginated wraps a list result with its pagination metadata.
func paginated[T any](c *fiber.Ctx, items []T, total int64, opts models.ListOptions) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": opts.Meta(total),
	})
}
