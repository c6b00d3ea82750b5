package product

import (
	"math"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Record keys of the persisted document.
const (
	keyType          = "type"
	keyProductID     = "product_id"
	keyName          = "name"
	keyPrice         = "price"
	keyQuantity      = "quantity_in_stock"
	keyWarrantyYears = "warranty_years"
	keyBrand         = "brand"
	keyExpiryDate    = "expiry_date"
	keySize          = "size"
	keyMaterial      = "material"
)

var commonFields = []string{keyType, keyProductID, keyName, keyPrice, keyQuantity}

var (
	maxInt = decimal.NewFromInt(math.MaxInt)
	minInt = decimal.NewFromInt(math.MinInt)
)

// Bounds on numeric literals. Larger exponents make decimal arithmetic and
// formatting cost grow with the exponent, not with the input size.
const (
	maxNumberLen   = 64
	maxNumberScale = 20
)

// EncodeFields writes the record fields of p into the currently open object.
func (p *Product) EncodeFields(e *jx.Encoder) {
	e.FieldStart(keyType)
	e.Str(string(p.Kind()))
	e.FieldStart(keyProductID)
	e.Str(p.ID)
	e.FieldStart(keyName)
	e.Str(p.Name)
	e.FieldStart(keyPrice)
	e.Num(jx.Num(p.Price.String()))
	e.FieldStart(keyQuantity)
	e.Int(p.Stock)
	variants[p.Kind()].encode(e, p.Details)
}

// Encode writes p as a single flat record object.
func (p *Product) Encode(e *jx.Encoder) {
	e.ObjStart()
	p.EncodeFields(e)
	e.ObjEnd()
}

// EncodeDocument returns the persisted document for products: a JSON array of
// records in the given order.
func EncodeDocument(products []Product) []byte {
	e := &jx.Encoder{}
	e.SetIdent(2)
	e.ArrStart()
	for i := range products {
		products[i].Encode(e)
	}
	e.ArrEnd()
	return e.Bytes()
}

// DecodeDocument parses a persisted document. The first invalid record aborts
// decoding; the error carries the record index.
func DecodeDocument(data []byte) ([]*Product, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		return nil, errors.Wrap(ErrInvalidProductData, "document is not a JSON array")
	}

	var products []*Product
	err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d, nil)
		if err != nil {
			return errors.Wrapf(err, "record %d", len(products))
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, asInvalid(err)
	}
	if err := requireEnd(d); err != nil {
		return nil, err
	}
	return products, nil
}

// DecodeRecord parses a single record. When newID is not nil it supplies the
// identifier of records without one.
func DecodeRecord(data []byte, newID func() string) (*Product, error) {
	d := jx.DecodeBytes(data)
	p, err := decodeProduct(d, newID)
	if err != nil {
		return nil, asInvalid(err)
	}
	if err := requireEnd(d); err != nil {
		return nil, err
	}
	return p, nil
}

// requireEnd rejects anything but whitespace after the top-level value.
func requireEnd(d *jx.Decoder) error {
	if d.Next() != jx.Invalid {
		return errors.Wrap(ErrInvalidProductData, "trailing data after JSON value")
	}
	return nil
}

// asInvalid classifies JSON syntax errors as invalid product data.
func asInvalid(err error) error {
	if errors.Is(err, ErrInvalidProductData) {
		return err
	}
	return errors.Wrapf(ErrInvalidProductData, "malformed JSON: %v", err)
}

// record holds the raw values of one decoded object.
type record struct {
	typ           string
	productID     string
	name          string
	price         decimal.Decimal
	quantity      int
	warrantyYears int
	brand         string
	expiryDate    string
	size          string
	material      string

	seen map[string]bool
}

func decodeProduct(d *jx.Decoder, newID func() string) (*Product, error) {
	if d.Next() != jx.Object {
		return nil, errors.Wrap(ErrInvalidProductData, "record is not a JSON object")
	}

	r := &record{seen: make(map[string]bool)}
	if err := d.ObjBytes(r.decodeField); err != nil {
		return nil, err
	}

	if !r.seen[keyType] {
		return nil, errors.Wrap(ErrInvalidProductData, "missing type discriminator")
	}
	kind, err := ParseKind(r.typ)
	if err != nil {
		return nil, err
	}
	v := variants[kind]

	if r.productID == "" && newID != nil {
		r.productID = newID()
		r.seen[keyProductID] = true
	}
	if err := r.require(commonFields); err != nil {
		return nil, err
	}
	if err := r.require(v.fields); err != nil {
		return nil, err
	}

	details, err := v.build(r)
	if err != nil {
		return nil, err
	}
	return New(Base{
		ID:    r.productID,
		Name:  r.name,
		Price: r.price,
		Stock: r.quantity,
	}, details)
}

func (r *record) decodeField(d *jx.Decoder, key []byte) error {
	var err error
	switch string(key) {
	case keyType:
		r.typ, err = d.Str()
	case keyProductID:
		r.productID, err = d.Str()
	case keyName:
		r.name, err = d.Str()
	case keyPrice:
		r.price, err = readDecimal(d)
	case keyQuantity:
		r.quantity, err = readInt(d)
	case keyWarrantyYears:
		r.warrantyYears, err = readInt(d)
	case keyBrand:
		r.brand, err = d.Str()
	case keyExpiryDate:
		r.expiryDate, err = d.Str()
	case keySize:
		r.size, err = d.Str()
	case keyMaterial:
		r.material, err = d.Str()
	default:
		return d.Skip()
	}
	if err != nil {
		return errors.Wrapf(ErrInvalidProductData, "field %q: %v", string(key), err)
	}
	r.seen[string(key)] = true
	return nil
}

func (r *record) require(keys []string) error {
	for _, k := range keys {
		if !r.seen[k] {
			return errors.Wrapf(ErrInvalidProductData, "missing field %q", k)
		}
	}
	return nil
}

func readDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	if tt := d.Next(); tt != jx.Number {
		return decimal.Zero, errors.Errorf("expected number, got %v", tt)
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	if len(n) > maxNumberLen {
		return decimal.Zero, errors.Errorf("number literal longer than %d bytes", maxNumberLen)
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, err
	}
	if exp := v.Exponent(); exp > maxNumberScale || exp < -maxNumberScale {
		return decimal.Zero, errors.Errorf("number %s is out of range", n)
	}
	return v, nil
}

// readInt accepts integral numbers in any notation, so 5.0 reads as 5.
func readInt(d *jx.Decoder) (int, error) {
	v, err := readDecimal(d)
	if err != nil {
		return 0, err
	}
	if !v.IsInteger() {
		return 0, errors.Errorf("%s is not an integer", v)
	}
	if v.GreaterThan(maxInt) || v.LessThan(minInt) {
		return 0, errors.Errorf("%s is out of range", v)
	}
	return int(v.IntPart()), nil
}
