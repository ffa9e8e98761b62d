// internal/database/errors.go
//
// Driver-error classification.  MySQL and MariaDB report constraint
// failures as *mysql.MySQLError with stable numbers, so we match on the
// number instead of parsing messages.
package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/yanizio/sitedesk/internal/apperr"
)

const (
	errDupEntry     = 1062 // ER_DUP_ENTRY
	errUnknownTable = 1146 // ER_NO_SUCH_TABLE
)

// IsDuplicate reports whether err is a unique-key violation.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}

// IsDuplicateOn reports whether err is a unique-key violation on the named
// key.  MySQL 8 qualifies the name with the table ("identity.uq_x"), older
// servers do not, so a suffix match covers both.
func IsDuplicateOn(err error, key string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != errDupEntry {
		return false
	}
	return strings.HasSuffix(me.Message, "'"+key+"'") ||
		strings.HasSuffix(me.Message, "."+key+"'")
}

// IsUnknownTable reports whether err is "table does not exist", which
// usually means migrations have not been applied.
func IsUnknownTable(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errUnknownTable
}

// Classify maps driver errors onto apperr sentinels.  sql.ErrNoRows becomes
// ErrNotFound and duplicate keys become ErrConflict; everything else is
// returned as is.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return apperr.ErrNotFound
	case IsDuplicate(err):
		return apperr.ErrConflict
	default:
		return err
	}
}
