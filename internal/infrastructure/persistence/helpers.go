package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/printshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// isDuplicateKeyErr reports whether err is a unique-constraint
// violation, both as gorm's translated sentinel and as the raw pq
// error surfaced by paths that bypass translation
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}

// translateNotFound maps gorm's record-not-found to the domain sentinel
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// allowed sort columns shared by the list endpoints
var sortableColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"status":     true,
	"email":      true,
}

// applyFilter applies ordering and pagination to a query. The order
// column is validated against an allow-list so filter input can never
// reach the SQL as anything but a known identifier.
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if !sortableColumns[orderBy] {
		orderBy = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	return query.
		Order(fmt.Sprintf("%s %s", orderBy, dir)).
		Offset(filter.Offset()).
		Limit(filter.Limit())
}
