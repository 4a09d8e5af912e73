package address

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// ShippingAddressInput is the checkout payload; the street line is sent as
// "address".
type ShippingAddressInput struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	FullName   string `json:"fullName"`
}

// ShippingAddress is the snapshot stored on an order (JSONB column).
type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
	FullName   string `json:"fullName,omitempty"`
}

// Value encodes as a JSON string; lib/pq would send []byte as bytea.
func (a ShippingAddress) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	return string(b), err
}

func (a *ShippingAddress) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = ShippingAddress{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("address: unsupported scan type")
	}
}
