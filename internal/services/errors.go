package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/charlesng35/fleetcn/pkg/errors"
)

const (
	pgUniqueViolation   = "23505"
	mysqlDuplicateEntry = 1062
	sqliteUniqueFailure = "unique constraint failed"
)

// isUniqueConstraintError recognises duplicate-key failures from every supported driver.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return strings.Contains(strings.ToLower(err.Error()), sqliteUniqueFailure)
}

// writeFailure maps a failed insert or update to a conflict carrying conflictMessage when a
// unique index rejected it, and to a wrapped internal error otherwise.
func writeFailure(op string, err error, conflictMessage string) error {
	if isUniqueConstraintError(err) {
		return apperrors.NewConflict(conflictMessage).WithInternal(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
