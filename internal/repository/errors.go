// Package repository defines error types that are reused across multiple
// repositories, and the single place where driver errors are translated
// into them.  Handlers only ever see these sentinels (possibly wrapped),
// never a raw MySQL or SQLite error.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when the addressed row does not exist (or is
// not visible to the caller).  Handlers translate it into 404.
var ErrNotFound = errors.New("record not found")

// ErrConflict signals a uniqueness violation.  Handlers translate it
// into 409.
var ErrConflict = errors.New("conflict")

// ErrRelatedNotFound is returned when an insert or update references a
// parent row that does not exist.
var ErrRelatedNotFound = errors.New("related record not found")

// ErrReferenced is returned when a delete is blocked because other rows
// still reference the target.
var ErrReferenced = errors.New("record is still referenced by other records")

// ErrValueOutOfRange is returned when the database refuses a value that
// does not fit its column (too long, or numerically out of range).
var ErrValueOutOfRange = errors.New("value does not fit the column")

// ErrSessionRevoked is returned when a refresh key no longer matches the
// one stored for the user (logged out, or superseded by a newer login).
var ErrSessionRevoked = errors.New("refresh session revoked")

// MySQL server error numbers.
const (
	mysqlOutOfRange    = 1264
	mysqlDataTooLong   = 1406
	mysqlDupEntry      = 1062
	mysqlRowReferenced = 1451
	mysqlNoParent      = 1452
)

// translate maps driver-specific failures onto the sentinels above.
// Anything unrecognised is returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDupEntry:
			return fmt.Errorf("%w: %s", ErrConflict, me.Message)
		case mysqlNoParent:
			return ErrRelatedNotFound
		case mysqlRowReferenced:
			return ErrReferenced
		case mysqlDataTooLong, mysqlOutOfRange:
			return fmt.Errorf("%w: %s", ErrValueOutOfRange, me.Message)
		}
		return err
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrConflict, se.Error())
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ErrRelatedNotFound
		}
		// primary result code only: fall back to the message
		if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			msg := se.Error()
			switch {
			case strings.Contains(msg, "UNIQUE"):
				return fmt.Errorf("%w: %s", ErrConflict, msg)
			case strings.Contains(msg, "FOREIGN KEY"):
				return ErrRelatedNotFound
			}
		}
	}
	return err
}

// translateDelete is translate for DELETE statements: SQLite reports a
// blocked delete with the same foreign-key code as a missing parent.
func translateDelete(err error) error {
	err = translate(err)
	if errors.Is(err, ErrRelatedNotFound) {
		return ErrReferenced
	}
	return err
}
