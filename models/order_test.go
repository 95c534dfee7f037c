package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderTotalsEmpty(t *testing.T) {
	order := Order{}
	assert.Equal(t, 0.0, order.TotalPrice())
	assert.Equal(t, 0, order.TotalQuantity())
}

func TestOrderTotals(t *testing.T) {
	order := Order{
		Lines: []OrderLine{
			{Quantity: 2, Product: Product{Price: 10.0}},
			{Quantity: 1, Product: Product{Price: 5.5}},
			{Quantity: 3, Product: Product{Price: 0}},
		},
	}

	assert.Equal(t, 25.5, order.TotalPrice())
	assert.Equal(t, 6, order.TotalQuantity())
}

func TestOrderLineTotalPrice(t *testing.T) {
	line := OrderLine{Quantity: 4, Product: Product{Price: 2.25}}
	assert.Equal(t, 9.0, line.TotalPrice())
}

func TestProductFirstPhoto(t *testing.T) {
	product := Product{}
	assert.Equal(t, PlaceholderImageURL, product.FirstPhoto())

	product.Images = []ProductImage{{Image: "/uploads/products/1.jpg"}}
	assert.Equal(t, "/uploads/products/1.jpg", product.FirstPhoto())
}
