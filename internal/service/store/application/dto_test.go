package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"obsidianwear/internal/service/store/domain"
)

func validRequest() *PlaceOrderRequest {
	return &PlaceOrderRequest{
		CustomerName: "Amine",
		Phone:        "0551234567",
		Address:      "12 Rue Didouche Mourad",
		Wilaya:       "Alger",
		Items: []OrderItemRequest{
			{ProductID: "p1", Size: "M", Color: "Black", Quantity: 1},
		},
	}
}

func TestPlaceOrderRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PlaceOrderRequest)
		valid  bool
	}{
		{"valid", func(r *PlaceOrderRequest) {}, true},
		{"missing name", func(r *PlaceOrderRequest) { r.CustomerName = "" }, false},
		{"missing phone", func(r *PlaceOrderRequest) { r.Phone = "" }, false},
		{"phone with 9 digits", func(r *PlaceOrderRequest) { r.Phone = "06123456" }, false},
		{"phone with 11 digits", func(r *PlaceOrderRequest) { r.Phone = "05512345678" }, false},
		{"phone not starting with 0", func(r *PlaceOrderRequest) { r.Phone = "1551234567" }, false},
		{"phone with letters", func(r *PlaceOrderRequest) { r.Phone = "05512345ab" }, false},
		{"missing address", func(r *PlaceOrderRequest) { r.Address = "" }, false},
		{"no items", func(r *PlaceOrderRequest) { r.Items = nil }, false},
		{"zero quantity", func(r *PlaceOrderRequest) { r.Items[0].Quantity = 0 }, false},
		{"negative quantity", func(r *PlaceOrderRequest) { r.Items[0].Quantity = -2 }, false},
		{"missing product id", func(r *PlaceOrderRequest) { r.Items[0].ProductID = "" }, false},
		{"email optional", func(r *PlaceOrderRequest) { r.Email = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := req.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrValidation)
			}
		})
	}
}
