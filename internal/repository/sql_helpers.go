package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	chatroom_errors "chat-rooms/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", chatroom_errors.ErrInvalidInput, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// mapWriteError turns constraint failures into domain errors. A dangling
// reference means the referenced chat or user does not exist.
func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: referenced record does not exist", chatroom_errors.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: duplicate record", chatroom_errors.ErrInvalidInput)
	default:
		return err
	}
}

func now(db *gorm.DB) time.Time {
	if db.Config != nil && db.NowFunc != nil {
		return db.NowFunc()
	}
	return time.Now().UTC()
}
