package repository

import (
	"errors"
	"fmt"
	"strings"

	"travelbuddy/internal/database"
	"travelbuddy/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// IsUniqueViolation reports whether err came from a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound AppError and anything
// else to an internal error carrying the cause.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// createError maps unique violations to conflicts with the given message.
func createError(err error, conflictMsg string) error {
	if IsUniqueViolation(err) {
		return &models.AppError{Code: models.CodeConflict, Message: conflictMsg, Err: err}
	}
	return models.NewInternalError(err)
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// paginate clamps limit/offset and applies ordering from a whitelist of
// sortable columns, falling back to created_at.
func paginate(db *gorm.DB, table string, opts models.ListOptions, sortable ...string) *gorm.DB {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := max(opts.Offset, 0)

	column := "created_at"
	for _, s := range sortable {
		if s == opts.SortBy {
			column = s
			break
		}
	}
	direction := "DESC"
	if !opts.Desc() {
		direction = "ASC"
	}

	return db.Order(fmt.Sprintf("%s.%s %s", table, column, direction)).Limit(limit).Offset(offset)
}

func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}
