package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/taskflow/internal/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

// translateError maps driver errors onto domain errors. notFound is
// returned in place of mongo.ErrNoDocuments.
func translateError(err, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrEmailExists
	}

	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return err
}
