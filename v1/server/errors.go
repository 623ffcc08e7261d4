package server

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

// Server error numbers that mean the addressed object does not exist.
const (
	errUnknownDatabase = 1049
	errUnknownTable    = 1051
	errNoSuchTable     = 1146
	errAccessDenied    = 1045
)

// TranslateError converts driver and GORM errors into seekdb error
// categories. The original error stays in the chain, so errors.As still
// finds the *mysql.MySQLError.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if seekdb.GetErrorCategory(err) != seekdb.CategoryUnknown {
		return err
	}
	return seekdb.NewError(categoryOf(err), err, "")
}

func categoryOf(err error) seekdb.ErrorCategory {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errUnknownDatabase, errUnknownTable, errNoSuchTable:
			return seekdb.CategoryNotFound
		case errAccessDenied:
			return seekdb.CategoryConnection
		default:
			return seekdb.CategorySQL
		}
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The caller gave up; the pool is fine.
		return seekdb.CategorySQL
	case errors.Is(err, gorm.ErrRecordNotFound):
		return seekdb.CategoryNotFound
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, sql.ErrConnDone),
		errors.As(err, &netErr):
		return seekdb.CategoryConnection
	default:
		return seekdb.CategorySQL
	}
}
