package services

import (
	stderrors "errors"

	"github.com/abrezinsky/councilvote/internal/errors"
	"github.com/abrezinsky/councilvote/internal/repository"
)

// translate converts repository sentinels into application errors. Messages
// describe the entity the caller was working with.
func translate(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NotFound(notFound)
	case stderrors.Is(err, repository.ErrConflict):
		return errors.Wrap(err, errors.ErrConflict, conflict)
	case stderrors.Is(err, repository.ErrHasHistory):
		return errors.Wrap(err, errors.ErrConflict, conflict)
	default:
		return err
	}
}
