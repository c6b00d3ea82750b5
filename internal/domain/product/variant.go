package product

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// DateLayout is the textual format of expiry dates, YYYY-MM-DD.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidProductData, "expiry date %q is not YYYY-MM-DD", s)
	}
	return t, nil
}

// variant is the per-kind entry of the dispatch table.
type variant struct {
	// fields are the record keys the variant adds to the common ones.
	fields []string
	render func(d Details, now time.Time) []string
	encode func(e *jx.Encoder, d Details)
	build  func(r *record) (Details, error)
}

var variants = map[Kind]variant{
	KindElectronics: {
		fields: []string{keyWarrantyYears, keyBrand},
		render: func(d Details, _ time.Time) []string {
			v := d.(Electronics)
			return []string{
				fmt.Sprintf("Warranty: %d yrs", v.WarrantyYears),
				"Brand: " + v.Brand,
			}
		},
		encode: func(e *jx.Encoder, d Details) {
			v := d.(Electronics)
			e.FieldStart(keyWarrantyYears)
			e.Int(v.WarrantyYears)
			e.FieldStart(keyBrand)
			e.Str(v.Brand)
		},
		build: func(r *record) (Details, error) {
			return Electronics{WarrantyYears: r.warrantyYears, Brand: r.brand}, nil
		},
	},
	KindGrocery: {
		fields: []string{keyExpiryDate},
		render: func(d Details, now time.Time) []string {
			v := d.(Grocery)
			status := "Fresh"
			if v.IsExpired(now) {
				status = "Expired"
			}
			return []string{"Expiry: " + v.ExpiryDate.Format(DateLayout), status}
		},
		encode: func(e *jx.Encoder, d Details) {
			e.FieldStart(keyExpiryDate)
			e.Str(d.(Grocery).ExpiryDate.Format(DateLayout))
		},
		build: func(r *record) (Details, error) {
			date, err := ParseDate(r.expiryDate)
			if err != nil {
				return nil, err
			}
			return Grocery{ExpiryDate: date}, nil
		},
	},
	KindClothing: {
		fields: []string{keySize, keyMaterial},
		render: func(d Details, _ time.Time) []string {
			v := d.(Clothing)
			return []string{"Size: " + v.Size, "Material: " + v.Material}
		},
		encode: func(e *jx.Encoder, d Details) {
			v := d.(Clothing)
			e.FieldStart(keySize)
			e.Str(v.Size)
			e.FieldStart(keyMaterial)
			e.Str(v.Material)
		},
		build: func(r *record) (Details, error) {
			return Clothing{Size: r.size, Material: r.material}, nil
		},
	},
}

// Render returns a one-line human-readable summary of the product. Grocery
// freshness is evaluated against now.
func (p *Product) Render(now time.Time) string {
	parts := []string{
		fmt.Sprintf("%s - %s", p.Kind(), p.Name),
		"ID: " + p.ID,
		"Price: " + p.Price.StringFixed(2),
		fmt.Sprintf("Stock: %d", p.Stock),
	}
	parts = append(parts, variants[p.Kind()].render(p.Details, now)...)
	return strings.Join(parts, " | ")
}

// String renders the product against the wall clock.
func (p *Product) String() string {
	return p.Render(time.Now())
}
