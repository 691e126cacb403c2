package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/taskflow/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// translateError maps driver errors onto domain errors. notFound is
// returned in place of gorm.ErrRecordNotFound.
func translateError(err, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrEmailExists
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrEmailExists
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return err
}
