package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

var _ ports.UnitOfWork = (*Store)(nil)

// OrderItem is the slice of an order line the integrity guard looks at.
type OrderItem struct {
	ID             uuid.UUID
	ProductID      uuid.UUID
	VariantID      *uuid.UUID
	BaseOfferID    *uuid.UUID
	VariantOfferID *uuid.UUID
}

// Store is an in-memory unit of work. Each Do runs against a private copy of
// the data under a store-wide lock and publishes it only when fn succeeds.
type Store struct {
	mu           sync.Mutex
	data         *dataset
	now          func() time.Time
	deleteFilter func(domain.OfferRef) bool
}

// Option configures the store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDeleteFilter installs a hook consulted on every offer delete. Returning
// false keeps the row while the delete still reports success, the way a
// soft-delete trigger or row policy would.
func WithDeleteFilter(keep func(domain.OfferRef) bool) Option {
	return func(s *Store) {
		s.deleteFilter = keep
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{data: newDataset(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Do runs fn in an isolated snapshot and commits it on success.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if fn == nil {
		return errors.New("memory unit of work: nil function")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, &memTx{store: s, data: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

// PutProduct seeds or replaces a product owned by the catalog subsystem.
func (s *Store) PutProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = cloneProduct(&p)
}

// PutVariant seeds or replaces a product variant.
func (s *Store) PutVariant(v domain.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.variants[v.ID] = cloneVariant(&v)
}

// PutSupplier seeds or replaces a supplier payout profile.
func (s *Store) PutSupplier(p domain.PayoutProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := p
	s.data.suppliers[p.SupplierID] = &clone
}

// AddOrderItem records an order line referencing catalog rows.
func (s *Store) AddOrderItem(item OrderItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.data.orderItems = append(s.data.orderItems, item)
}

// Reset drops every row.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = newDataset()
}

type dataset struct {
	products      map[uuid.UUID]*domain.Product
	variants      map[uuid.UUID]*domain.Variant
	suppliers     map[uuid.UUID]*domain.PayoutProfile
	bases         map[uuid.UUID]*domain.BaseOffer
	variantOffers map[uuid.UUID]*domain.VariantOffer
	orderItems    []OrderItem
}

func newDataset() *dataset {
	return &dataset{
		products:      map[uuid.UUID]*domain.Product{},
		variants:      map[uuid.UUID]*domain.Variant{},
		suppliers:     map[uuid.UUID]*domain.PayoutProfile{},
		bases:         map[uuid.UUID]*domain.BaseOffer{},
		variantOffers: map[uuid.UUID]*domain.VariantOffer{},
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for id, p := range d.products {
		c.products[id] = cloneProduct(p)
	}
	for id, v := range d.variants {
		c.variants[id] = cloneVariant(v)
	}
	for id, p := range d.suppliers {
		profile := *p
		c.suppliers[id] = &profile
	}
	for id, o := range d.bases {
		c.bases[id] = o.Clone()
	}
	for id, o := range d.variantOffers {
		c.variantOffers[id] = o.Clone()
	}
	c.orderItems = append([]OrderItem(nil), d.orderItems...)
	return c
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	if p.AutoPrice != nil {
		price := *p.AutoPrice
		c.AutoPrice = &price
	}
	return &c
}

func cloneVariant(v *domain.Variant) *domain.Variant {
	c := *v
	if v.Options != nil {
		c.Options = make(map[string]string, len(v.Options))
		for k, val := range v.Options {
			c.Options[k] = val
		}
	}
	return &c
}

type memTx struct {
	store *Store
	data  *dataset
}

func (t *memTx) Offers() ports.OfferRepository      { return &offerRepository{tx: t} }
func (t *memTx) Catalog() ports.CatalogRepository   { return &catalogRepository{tx: t} }
func (t *memTx) Suppliers() ports.SupplierDirectory { return &supplierDirectory{tx: t} }
func (t *memTx) Orders() ports.OrderReferences      { return &orderReferences{tx: t} }

func (t *memTx) now() time.Time { return t.store.now().UTC() }

func (t *memTx) keep(ref domain.OfferRef) bool {
	return t.store.deleteFilter != nil && !t.store.deleteFilter(ref)
}
