package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// OfferKind discriminates the two offer tables.
type OfferKind string

const (
	OfferKindBase    OfferKind = "base"
	OfferKindVariant OfferKind = "variant"
)

// Valid reports whether the kind is one of the known offer kinds.
func (k OfferKind) Valid() bool {
	return k == OfferKindBase || k == OfferKindVariant
}

// OfferRef is the tagged identifier used at the boundary to address an offer
// without knowing which table it lives in, e.g. "base:<uuid>".
type OfferRef struct {
	Kind OfferKind
	ID   uuid.UUID
}

// BaseRef builds a reference to a base offer.
func BaseRef(id uuid.UUID) OfferRef { return OfferRef{Kind: OfferKindBase, ID: id} }

// VariantRef builds a reference to a variant offer.
func VariantRef(id uuid.UUID) OfferRef { return OfferRef{Kind: OfferKindVariant, ID: id} }

func (r OfferRef) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}

// IsZero reports whether the reference was never set.
func (r OfferRef) IsZero() bool {
	return r.Kind == "" && r.ID == uuid.Nil
}

// ParseOfferRef decodes "base:<uuid>" or "variant:<uuid>".
func ParseOfferRef(raw string) (OfferRef, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return OfferRef{}, fmt.Errorf("%w: %q", ErrInvalidOfferRef, raw)
	}
	ref := OfferRef{Kind: OfferKind(strings.ToLower(kind))}
	if !ref.Kind.Valid() {
		return OfferRef{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidOfferRef, kind)
	}
	parsed, err := uuid.Parse(id)
	if err != nil || parsed == uuid.Nil {
		return OfferRef{}, fmt.Errorf("%w: %q", ErrInvalidOfferRef, raw)
	}
	ref.ID = parsed
	return ref, nil
}

// MarshalText lets refs travel as plain strings in JSON payloads and workflow inputs.
func (r OfferRef) MarshalText() ([]byte, error) {
	if r.IsZero() {
		return []byte{}, nil
	}
	return []byte(r.String()), nil
}

func (r *OfferRef) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = OfferRef{}
		return nil
	}
	parsed, err := ParseOfferRef(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
