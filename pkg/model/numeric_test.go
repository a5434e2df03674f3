package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicehq/planbudget/pkg/model"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"number", `193.99`, 193.99},
		{"integer", `50`, 50},
		{"string", `"12.50"`, 12.5},
		{"string with currency sign", `"$12.50"`, 12.5},
		{"string with thousands separator", `"1,200.00"`, 1200},
		{"empty string", `""`, 0},
		{"null", `null`, 0},
		{"garbage coerces to zero", `"not a price"`, 0},
		{"negative passes through", `-3`, -3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var a model.Amount
			require.NoError(t, json.Unmarshal([]byte(tc.in), &a))
			assert.InDelta(t, tc.want, float64(a), 1e-9)
		})
	}
}

func TestQuantity_UnmarshalJSON(t *testing.T) {
	var q model.Quantity
	require.NoError(t, json.Unmarshal([]byte(`"2"`), &q))
	assert.InDelta(t, 2.0, float64(q), 1e-9)

	require.NoError(t, json.Unmarshal([]byte(`1.5`), &q))
	assert.InDelta(t, 1.5, float64(q), 1e-9)

	require.NoError(t, json.Unmarshal([]byte(`"x"`), &q))
	assert.InDelta(t, 0.0, float64(q), 1e-9)
}

func TestAmount_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(model.Amount(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5", string(out))
}

func TestProductUsage_MixedWireShapes(t *testing.T) {
	// Upstream payloads mix numeric and string fields freely.
	raw := `{"item_code":"A1","quantity":"2","unit_price":45.0}`
	var p model.ProductUsage
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, "A1", p.ItemCode)
	assert.InDelta(t, 2.0, float64(p.Quantity), 1e-9)
	assert.InDelta(t, 45.0, float64(p.UnitPrice), 1e-9)
}
