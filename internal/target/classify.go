package target

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/mbrukman/sqlsmith/internal/ir"
)

// ExecError is an engine error reduced to a portable class plus the
// engine's own code.
type ExecError struct {
	Class   ir.ErrorClass
	Code    string
	Message string
	Err     error
}

func (e *ExecError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Class, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

func (e *ExecError) Unwrap() error { return e.Err }

// IsSyntax reports whether err is an engine syntax error. The generator
// only emits well-formed statements, so these point at renderer bugs or
// dialect gaps.
func IsSyntax(err error) bool {
	var e *ExecError
	return errors.As(err, &e) && e.Class == ir.ClassSyntax
}

// IsTimeout reports whether err is a statement timeout.
func IsTimeout(err error) bool {
	var e *ExecError
	return errors.As(err, &e) && e.Class == ir.ClassTimeout
}

// Classify maps a driver error onto an ExecError.
func Classify(err error) *ExecError {
	out := &ExecError{Class: ir.ClassOther, Message: err.Error(), Err: err}

	var (
		pqErr   *pq.Error
		pgErr   *pgconn.PgError
		myErr   *mysql.MySQLError
		liteErr sqlite3.Error
		netErr  net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		out.Class = ir.ClassTimeout
	case errors.Is(err, context.Canceled):
		out.Class = ir.ClassCanceled
	case errors.As(err, &pqErr):
		out.Code = string(pqErr.Code)
		out.Message = pqErr.Message
		out.Class = classifySQLState(out.Code)
	case errors.As(err, &pgErr):
		out.Code = pgErr.Code
		out.Message = pgErr.Message
		out.Class = classifySQLState(out.Code)
	case errors.As(err, &myErr):
		out.Code = strconv.Itoa(int(myErr.Number))
		out.Message = myErr.Message
		out.Class = classifyMySQL(myErr.Number)
	case errors.As(err, &liteErr):
		out.Code = strconv.Itoa(int(liteErr.ExtendedCode))
		out.Class = classifySQLite(liteErr)
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, mysql.ErrInvalidConn), errors.As(err, &netErr):
		out.Class = ir.ClassConnection
	}
	return out
}

// classifySQLState follows the SQLSTATE class prefixes shared by lib/pq
// and pgx.
func classifySQLState(code string) ir.ErrorClass {
	switch {
	case code == "42601":
		return ir.ClassSyntax
	case code == "57014":
		return ir.ClassTimeout
	case strings.HasPrefix(code, "42"):
		return ir.ClassSemantic
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"):
		return ir.ClassConnection
	default:
		return ir.ClassOther
	}
}

// MySQL server error numbers.
const (
	erParseError       = 1064
	erSyntaxError      = 1149
	erBadFieldError    = 1054
	erNonUniqError     = 1052
	erNoSuchTable      = 1146
	erDerivedMustAlias = 1248
	erNonUniqTable     = 1066
	erOperandColumns   = 1241
	erWrongArguments   = 1210
	erQueryInterrupted = 1317
	erQueryTimeout     = 3024
	erIllegalMixColl   = 1267
	erSubqueryNoRow    = 1242
	erDupFieldName     = 1060
)

func classifyMySQL(number uint16) ir.ErrorClass {
	switch number {
	case erParseError, erSyntaxError:
		return ir.ClassSyntax
	case erBadFieldError, erNonUniqError, erNoSuchTable, erDerivedMustAlias,
		erNonUniqTable, erOperandColumns, erWrongArguments, erIllegalMixColl,
		erSubqueryNoRow, erDupFieldName:
		return ir.ClassSemantic
	case erQueryInterrupted, erQueryTimeout:
		return ir.ClassTimeout
	default:
		return ir.ClassOther
	}
}

func classifySQLite(e sqlite3.Error) ir.ErrorClass {
	switch e.Code {
	case sqlite3.ErrError:
		msg := e.Error()
		if strings.Contains(msg, "syntax error") || strings.Contains(msg, "incomplete input") {
			return ir.ClassSyntax
		}
		return ir.ClassSemantic
	case sqlite3.ErrInterrupt:
		return ir.ClassTimeout
	case sqlite3.ErrCantOpen, sqlite3.ErrNotADB:
		return ir.ClassConnection
	default:
		return ir.ClassOther
	}
}
