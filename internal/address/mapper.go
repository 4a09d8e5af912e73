package address

import (
	"strings"

	"boutique-be/internal/apperr"
)

var ErrIncompleteAddress = apperr.New(apperr.KindInvalidInput, "Adresse de livraison incomplète")

// MapInputToShipping maps the checkout "address" field onto Street.
func MapInputToShipping(in ShippingAddressInput) ShippingAddress {
	return ShippingAddress{
		Street:     strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
		Phone:      strings.TrimSpace(in.Phone),
		FullName:   strings.TrimSpace(in.FullName),
	}
}

// Validate requires street, city and country.
func (a ShippingAddress) Validate() error {
	if a.Street == "" || a.City == "" || a.Country == "" {
		return ErrIncompleteAddress
	}
	return nil
}
