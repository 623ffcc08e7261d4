package seekdb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Error categories returned by this package. Every error produced by a
// Client or Collection wraps exactly one of these sentinels, so callers can
// branch with errors.Is without caring about the underlying driver.
var (
	// ErrConnection is returned when the connection pool or transport fails.
	ErrConnection = errors.New("connection error")

	// ErrSQL is returned for statement failures that are not otherwise classified,
	// including primary-key conflicts.
	ErrSQL = errors.New("sql error")

	// ErrNotFound is returned when a collection or database does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConfig is returned when required configuration is missing or invalid,
	// for example when a collection's dimension cannot be resolved.
	ErrConfig = errors.New("config error")

	// ErrEmbedding is returned when text-to-vector derivation is required but
	// unavailable or failed.
	ErrEmbedding = errors.New("embedding error")

	// ErrInvalidInput is returned on precondition violations. No statement has
	// been issued when this error is returned.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSerialization is returned when a structured value cannot be encoded or decoded.
	ErrSerialization = errors.New("serialization error")
)

// ErrorCategory represents the category of an error returned by this package.
type ErrorCategory int

const (
	CategoryUnknown ErrorCategory = iota
	CategoryConnection
	CategorySQL
	CategoryNotFound
	CategoryConfig
	CategoryEmbedding
	CategoryInvalidInput
	CategorySerialization
)

var categorySentinels = map[ErrorCategory]error{
	CategoryConnection:    ErrConnection,
	CategorySQL:           ErrSQL,
	CategoryNotFound:      ErrNotFound,
	CategoryConfig:        ErrConfig,
	CategoryEmbedding:     ErrEmbedding,
	CategoryInvalidInput:  ErrInvalidInput,
	CategorySerialization: ErrSerialization,
}

func (c ErrorCategory) String() string {
	switch c {
	case CategoryConnection:
		return "connection"
	case CategorySQL:
		return "sql"
	case CategoryNotFound:
		return "not_found"
	case CategoryConfig:
		return "config"
	case CategoryEmbedding:
		return "embedding"
	case CategoryInvalidInput:
		return "invalid_input"
	case CategorySerialization:
		return "serialization"
	default:
		return "unknown"
	}
}

// Error is the concrete error type of this package. It carries a category,
// a human-readable message and, optionally, the underlying cause.
type Error struct {
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *Error) Error() string {
	sentinel := categorySentinels[e.Category]
	prefix := "seekdb"
	if sentinel != nil {
		prefix = sentinel.Error()
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return prefix
	}
}

// Unwrap exposes both the category sentinel and the cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel, ok := categorySentinels[e.Category]; ok {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewError builds an *Error of the given category.
func NewError(category ErrorCategory, err error, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...), Err: err}
}

func invalidInput(format string, args ...any) error {
	return NewError(CategoryInvalidInput, nil, format, args...)
}

func configError(format string, args ...any) error {
	return NewError(CategoryConfig, nil, format, args...)
}

func embeddingError(err error, format string, args ...any) error {
	return NewError(CategoryEmbedding, err, format, args...)
}

func notFound(format string, args ...any) error {
	return NewError(CategoryNotFound, nil, format, args...)
}

func serializationError(err error, format string, args ...any) error {
	return NewError(CategorySerialization, err, format, args...)
}

// GetErrorCategory returns the category of err, or CategoryUnknown when err
// was not produced by this package.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	for category, sentinel := range categorySentinels {
		if errors.Is(err, sentinel) {
			return category
		}
	}
	return CategoryUnknown
}

// classifyStatementError makes sure every error coming back from a Backend
// carries a category. Backends are expected to classify connection and
// not-found failures themselves; anything left over is a statement failure.
func classifyStatementError(err error) error {
	if err == nil {
		return nil
	}
	if GetErrorCategory(err) != CategoryUnknown {
		return err
	}
	return &Error{Category: CategorySQL, Err: err}
}

// mysqlInvalidArgument is the server error number DBMS_HYBRID_SEARCH reports
// when it cannot handle a search_parm shape.
const mysqlInvalidArgument = 1210

// IsHybridInvalidArgument reports whether err is the engine's "invalid
// argument" rejection of a hybrid search request. It is the only condition
// under which HybridSearchAdvanced falls back to client-side search; every
// other failure is returned unchanged.
func IsHybridInvalidArgument(err error) bool {
	if err == nil || !errors.Is(err, ErrSQL) {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlInvalidArgument
	}
	// Backends that do not surface driver errors only leave the message.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "1210")
}
