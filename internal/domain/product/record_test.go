package product

import (
	"strings"
	"testing"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRoundTrip(t *testing.T) {
	e, err := NewElectronics(Base{ID: "E1", Name: "Laptop", Price: decimal.RequireFromString("999.99"), Stock: 5}, 2, "X")
	require.NoError(t, err)
	g, err := NewGrocery(Base{ID: "G1", Name: "Milk", Price: decimal.NewFromInt(1), Stock: 10}, "2000-01-01")
	require.NoError(t, err)
	c, err := NewClothing(Base{ID: "C1", Name: "Shirt", Price: decimal.Zero, Stock: 0}, "M", "Cotton")
	require.NoError(t, err)

	data := EncodeDocument([]Product{*e, *g, *c})

	got, err := DecodeDocument(data)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, want := range []*Product{e, g, c} {
		assert.Equal(t, want.ID, got[i].ID)
		assert.Equal(t, want.Name, got[i].Name)
		assert.True(t, want.Price.Equal(got[i].Price), "price of %s", want.ID)
		assert.Equal(t, want.Stock, got[i].Stock)
		assert.Equal(t, want.Details, got[i].Details)
	}
}

func TestEncode_Keys(t *testing.T) {
	g, err := NewGrocery(Base{ID: "G1", Name: "Milk", Price: decimal.RequireFromString("2.5"), Stock: 4}, "2024-02-29")
	require.NoError(t, err)

	e := &jx.Encoder{}
	g.Encode(e)

	assert.JSONEq(t, `{
		"type": "Grocery",
		"product_id": "G1",
		"name": "Milk",
		"price": 2.5,
		"quantity_in_stock": 4,
		"expiry_date": "2024-02-29"
	}`, string(e.Bytes()))
}

func TestDecodeDocument_LegacyFile(t *testing.T) {
	// Float quantities and key order as written by older tools.
	data := []byte(`[
		{"type": "Electronics", "product_id": "E1", "name": "TV", "price": 100.0,
		 "quantity_in_stock": 5.0, "warranty_years": 2, "brand": "X"},
		{"product_id": "C1", "name": "Hat", "price": 5, "quantity_in_stock": 1,
		 "size": "S", "material": "Wool", "type": "Clothing", "extra": {"ignored": [1, 2]}}
	]`)

	got, err := DecodeDocument(data)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, KindElectronics, got[0].Kind())
	assert.Equal(t, 5, got[0].Stock)
	assert.True(t, decimal.NewFromInt(100).Equal(got[0].Price))
	assert.Equal(t, Electronics{WarrantyYears: 2, Brand: "X"}, got[0].Details)
	assert.Equal(t, Clothing{Size: "S", Material: "Wool"}, got[1].Details)
}

func TestDecodeDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ``},
		{name: "not an array", data: `{"type": "Clothing"}`},
		{name: "truncated", data: `[{"type": "Clothing"`},
		{name: "record not an object", data: `[1]`},
		{name: "unknown type", data: `[{"type": "Unknown", "product_id": "U1", "name": "x", "price": 1, "quantity_in_stock": 1}]`},
		{name: "missing type", data: `[{"product_id": "U1", "name": "x", "price": 1, "quantity_in_stock": 1}]`},
		{name: "missing variant field", data: `[{"type": "Electronics", "product_id": "E1", "name": "x", "price": 1, "quantity_in_stock": 1, "brand": "X"}]`},
		{name: "missing common field", data: `[{"type": "Clothing", "product_id": "C1", "name": "x", "quantity_in_stock": 1, "size": "M", "material": "x"}]`},
		{name: "malformed date", data: `[{"type": "Grocery", "product_id": "G1", "name": "x", "price": 1, "quantity_in_stock": 1, "expiry_date": "01/01/2000"}]`},
		{name: "fractional quantity", data: `[{"type": "Clothing", "product_id": "C1", "name": "x", "price": 1, "quantity_in_stock": 1.5, "size": "M", "material": "x"}]`},
		{name: "string price", data: `[{"type": "Clothing", "product_id": "C1", "name": "x", "price": "1", "quantity_in_stock": 1, "size": "M", "material": "x"}]`},
		{name: "negative stock", data: `[{"type": "Clothing", "product_id": "C1", "name": "x", "price": 1, "quantity_in_stock": -1, "size": "M", "material": "x"}]`},
		{name: "huge price exponent", data: `[{"type": "Clothing", "product_id": "C1", "name": "x", "price": 1e200000000, "quantity_in_stock": 1, "size": "M", "material": "x"}]`},
		{name: "huge quantity exponent", data: `[{"type": "Clothing", "product_id": "C1", "name": "x", "price": 1, "quantity_in_stock": 1e200000000, "size": "M", "material": "x"}]`},
		{name: "tiny price exponent", data: `[{"type": "Clothing", "product_id": "C1", "name": "x", "price": 1e-200000000, "quantity_in_stock": 1, "size": "M", "material": "x"}]`},
		{name: "quantity out of int range", data: `[{"type": "Clothing", "product_id": "C1", "name": "x", "price": 1, "quantity_in_stock": 1e20, "size": "M", "material": "x"}]`},
		{name: "overlong number", data: `[{"type": "Clothing", "product_id": "C1", "name": "x", "price": 1.` + strings.Repeat("0", 100) + `, "quantity_in_stock": 1, "size": "M", "material": "x"}]`},
		{name: "trailing data", data: `[] {"garbage": true} nonsense`},
		{name: "concatenated documents", data: `[] []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDocument([]byte(tt.data))
			require.ErrorIs(t, err, ErrInvalidProductData)
			assert.Nil(t, got)
		})
	}
}

func TestDecodeDocument_ErrorNamesRecord(t *testing.T) {
	data := []byte(`[
		{"type": "Clothing", "product_id": "C1", "name": "x", "price": 1, "quantity_in_stock": 1, "size": "M", "material": "x"},
		{"type": "Unknown", "product_id": "U1", "name": "x", "price": 1, "quantity_in_stock": 1}
	]`)

	_, err := DecodeDocument(data)
	require.ErrorIs(t, err, ErrInvalidProductData)
	assert.Contains(t, err.Error(), "record 1")
	assert.Contains(t, err.Error(), `"Unknown"`)
}

func TestDecodeDocument_TrailingWhitespace(t *testing.T) {
	got, err := DecodeDocument([]byte("[]\n\t "))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeRecord_TrailingData(t *testing.T) {
	data := []byte(`{"type": "Clothing", "product_id": "C1", "name": "Hat", "price": 5, "quantity_in_stock": 1, "size": "S", "material": "Wool"} trailing`)

	got, err := DecodeRecord(data, nil)
	require.ErrorIs(t, err, ErrInvalidProductData)
	assert.Nil(t, got)
}

func TestDecodeRecord_NumberNotation(t *testing.T) {
	data := []byte(`{"type": "Clothing", "product_id": "C1", "name": "Hat", "price": 1.25e1, "quantity_in_stock": 5.0, "size": "S", "material": "Wool"}`)

	got, err := DecodeRecord(data, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
	assert.Equal(t, "12.5", got.Price.String())
	assert.Equal(t, "62.5", got.TotalValue().String())
}

func TestDecodeDocument_Empty(t *testing.T) {
	got, err := DecodeDocument([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeRecord_GeneratedID(t *testing.T) {
	data := []byte(`{"type": "Clothing", "name": "Hat", "price": 5, "quantity_in_stock": 1, "size": "S", "material": "Wool"}`)

	_, err := DecodeRecord(data, nil)
	require.ErrorIs(t, err, ErrInvalidProductData)

	p, err := DecodeRecord(data, func() string { return "generated" })
	require.NoError(t, err)
	assert.Equal(t, "generated", p.ID)
}
