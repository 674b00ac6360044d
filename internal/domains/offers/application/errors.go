package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

// Error classes. Every error leaving the service wraps exactly one of them.
var (
	ErrValidation     = errors.New("invalid offer input")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrPayoutNotReady = errors.New("payout not ready")
	ErrInternal       = errors.New("internal error")
)

// Kind is the machine-readable error class.
type Kind string

const (
	KindNone           Kind = ""
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindPayoutNotReady Kind = "payout_not_ready"
	KindInternal       Kind = "internal"
)

// KindOf classifies err. Unclassified errors count as internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrPayoutNotReady):
		return KindPayoutNotReady
	default:
		return KindInternal
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isClassified(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, domain.ErrInvalidOfferRef) ||
		errors.Is(err, domain.ErrPriceRequired) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrNegativeQuantity) ||
		errors.Is(err, domain.ErrNegativeLeadDays) ||
		errors.Is(err, domain.ErrInvalidCurrency) ||
		errors.Is(err, domain.ErrMissingSupplier) ||
		errors.Is(err, domain.ErrMissingProduct) ||
		errors.Is(err, domain.ErrMissingVariant) ||
		errors.Is(err, domain.ErrVariantNotInProduct) ||
		errors.Is(err, domain.ErrConversionTarget) ||
		errors.Is(err, domain.ErrConversionSameKind) ||
		errors.Is(err, domain.ErrConversionCrossProduct):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, ports.ErrNotFound) ||
		errors.Is(err, ports.ErrProductNotFound) ||
		errors.Is(err, ports.ErrVariantNotFound) ||
		errors.Is(err, ports.ErrSupplierNotFound) ||
		errors.Is(err, domain.ErrOfferNotOwned):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, domain.ErrOfferReferenced) ||
		errors.Is(err, domain.ErrProductReferenced) ||
		errors.Is(err, domain.ErrDuplicateOffer):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, ports.ErrDuplicate):
		return fmt.Errorf("%w: %w: %w", ErrConflict, domain.ErrDuplicateOffer, err)
	case errors.Is(err, domain.ErrPayoutNotReady):
		return fmt.Errorf("%w: %w", ErrPayoutNotReady, err)
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}

func isClassified(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrPayoutNotReady) ||
		errors.Is(err, ErrInternal)
}
