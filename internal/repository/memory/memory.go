// Package memory implements the repositories on in-process maps. It backs
// the memory store driver and the service and handler tests.
package memory

import (
	"context"
	"fmt"

	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/repository"
)

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:  NewUserRepository(),
		Task:  NewTaskRepository(),
		Close: func() error { return nil },
	}
}

// checkContext reports a cancelled or expired context the same way the
// database-backed stores do.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
