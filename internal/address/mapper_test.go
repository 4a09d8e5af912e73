package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapInputToShipping(t *testing.T) {
	in := ShippingAddressInput{
		Address:    " 12 rue de Marseille ",
		City:       "Tunis",
		PostalCode: "1000",
		Country:    "TN",
		Phone:      "+216 20 000 000",
		FullName:   "Amira Ben Salah",
	}

	got := MapInputToShipping(in)

	assert.Equal(t, "12 rue de Marseille", got.Street)
	assert.Equal(t, "Tunis", got.City)
	assert.Equal(t, "Amira Ben Salah", got.FullName)
	assert.NoError(t, got.Validate())
}

func TestShippingAddress_Validate(t *testing.T) {
	assert.ErrorIs(t, ShippingAddress{City: "Tunis", Country: "TN"}.Validate(), ErrIncompleteAddress)
	assert.ErrorIs(t, ShippingAddress{}.Validate(), ErrIncompleteAddress)
}

func TestShippingAddress_ValueScan(t *testing.T) {
	a := ShippingAddress{Street: "1 av. Habib Bourguiba", City: "Sfax", Country: "TN"}

	v, err := a.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"street":"1 av. Habib Bourguiba","city":"Sfax","postalCode":"","country":"TN"}`, v.(string))

	var back ShippingAddress
	require.NoError(t, back.Scan(v))
	assert.Equal(t, a, back)

	require.NoError(t, back.Scan(nil))
	assert.Equal(t, ShippingAddress{}, back)

	assert.Error(t, back.Scan(42))
}
