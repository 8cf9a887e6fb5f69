package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/tabular"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant or carried a malformed value.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrConflict reports a clash with existing state: a duplicate import workflow id, or a
	// store whose ids have run out. Status transitions never produce it.
	ErrConflict = errors.New("order state conflict")
	// ErrInternal wraps codec I/O failures and other unexpected faults.
	ErrInternal = errors.New("internal order error")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInternal) {
		return err
	}
	if errors.Is(err, ports.ErrIDsExhausted) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, tabular.ErrMalformed) ||
		errors.Is(err, tabular.ErrInvalidValue) ||
		errors.Is(err, tabular.ErrUnknownStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
