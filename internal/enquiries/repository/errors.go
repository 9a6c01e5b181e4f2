package repository

import (
	"fmt"

	"github.com/dreamspace-builders/site-backend/internal/enquiries/domain"
	"github.com/dreamspace-builders/site-backend/internal/storage/docstore"
)

func mapErr(op string, err error) error {
	switch {
	case docstore.IsNotFound(err):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case docstore.IsUnavailable(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
