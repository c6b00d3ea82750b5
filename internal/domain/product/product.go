// Package product models the closed set of product variants tracked by the
// inventory: Electronics, Grocery and Clothing.
//
// A Product carries the fields shared by every variant and a Details value
// holding the variant-specific attributes. Per-variant behavior (rendering,
// encoding, decoding) is looked up in a dispatch table keyed by Kind.
package product

import (
	"math"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind is the discriminator identifying a product variant. Its values are the
// `type` tags of persisted records.
type Kind string

const (
	KindElectronics Kind = "Electronics"
	KindGrocery     Kind = "Grocery"
	KindClothing    Kind = "Clothing"
)

// Kinds lists every supported variant in display order.
var Kinds = []Kind{KindElectronics, KindGrocery, KindClothing}

// ParseKind returns the Kind named by tag. Unknown tags are rejected with
// ErrInvalidProductData.
func ParseKind(tag string) (Kind, error) {
	k := Kind(tag)
	if _, ok := variants[k]; !ok {
		return "", errors.Wrapf(ErrInvalidProductData, "unknown product type %q", tag)
	}
	return k, nil
}

// Details holds the variant-specific attributes of a product. The set of
// implementations is closed: Electronics, Grocery and Clothing.
type Details interface {
	Kind() Kind
	details()
}

// Electronics are devices sold with a warranty.
type Electronics struct {
	WarrantyYears int
	Brand         string
}

func (Electronics) Kind() Kind { return KindElectronics }
func (Electronics) details()   {}

// Grocery items are perishable and expire after ExpiryDate.
type Grocery struct {
	// ExpiryDate is a calendar date at midnight UTC.
	ExpiryDate time.Time
}

func (Grocery) Kind() Kind { return KindGrocery }
func (Grocery) details()   {}

// IsExpired reports whether the expiry date lies strictly before the calendar
// date of now. Goods expiring today are still fresh.
func (g Grocery) IsExpired(now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return g.ExpiryDate.Before(today)
}

// Clothing items come in a size and a material.
type Clothing struct {
	Size     string
	Material string
}

func (Clothing) Kind() Kind { return KindClothing }
func (Clothing) details()   {}

// Base holds the attributes shared by every variant.
type Base struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

// Product is a single stocked item.
type Product struct {
	ID      string
	Name    string
	Price   decimal.Decimal
	Stock   int
	Details Details
}

// New validates base and details and returns the resulting product.
func New(b Base, d Details) (*Product, error) {
	if b.ID == "" {
		return nil, errors.Wrap(ErrInvalidProductData, "product id is required")
	}
	if b.Price.IsNegative() {
		return nil, errors.Wrapf(ErrInvalidProductData, "price %s is negative", b.Price)
	}
	if b.Stock < 0 {
		return nil, errors.Wrapf(ErrInvalidProductData, "quantity in stock %d is negative", b.Stock)
	}
	if d == nil {
		return nil, errors.Wrap(ErrInvalidProductData, "product details are required")
	}
	if e, ok := d.(Electronics); ok && e.WarrantyYears < 0 {
		return nil, errors.Wrapf(ErrInvalidProductData, "warranty years %d is negative", e.WarrantyYears)
	}
	return &Product{
		ID:      b.ID,
		Name:    b.Name,
		Price:   b.Price,
		Stock:   b.Stock,
		Details: d,
	}, nil
}

// NewElectronics creates an Electronics product.
func NewElectronics(b Base, warrantyYears int, brand string) (*Product, error) {
	return New(b, Electronics{WarrantyYears: warrantyYears, Brand: brand})
}

// NewGrocery creates a Grocery product. The expiry date must use the
// YYYY-MM-DD format.
func NewGrocery(b Base, expiryDate string) (*Product, error) {
	date, err := ParseDate(expiryDate)
	if err != nil {
		return nil, err
	}
	return New(b, Grocery{ExpiryDate: date})
}

// NewClothing creates a Clothing product.
func NewClothing(b Base, size, material string) (*Product, error) {
	return New(b, Clothing{Size: size, Material: material})
}

// Kind returns the variant of the product.
func (p *Product) Kind() Kind {
	return p.Details.Kind()
}

// Sell removes quantity units from stock. Selling more than is in stock fails
// with *InsufficientStockError and leaves the stock untouched.
func (p *Product) Sell(quantity int) error {
	if quantity <= 0 {
		return &InvalidQuantityError{ProductID: p.ID, Quantity: quantity}
	}
	if quantity > p.Stock {
		return &InsufficientStockError{
			ProductID: p.ID,
			Requested: quantity,
			Available: p.Stock,
		}
	}
	p.Stock -= quantity
	return nil
}

// Restock adds amount units to stock.
func (p *Product) Restock(amount int) error {
	if amount < 0 || p.Stock > math.MaxInt-amount {
		return &InvalidQuantityError{ProductID: p.ID, Quantity: amount}
	}
	p.Stock += amount
	return nil
}

// TotalValue returns price multiplied by the quantity in stock.
func (p *Product) TotalValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// IsExpired reports whether the product is a Grocery past its expiry date.
// Other variants never expire.
func (p *Product) IsExpired(now time.Time) bool {
	g, ok := p.Details.(Grocery)
	return ok && g.IsExpired(now)
}
