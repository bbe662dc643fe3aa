package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredReceipt_ToParsed(t *testing.T) {
	s := &StructuredReceipt{
		Vendor: "Whole Foods Market",
		Date:   "2025-04-17",
		Items: []StructuredItem{
			{Name: "Organic Bananas", Quantity: 2, UnitPrice: 0.79, Total: 1.58},
			{Name: "Oat Milk", Quantity: 0, Total: 4.5},
			{Name: "Coffee Beans", Quantity: 1, UnitPrice: 12.99},
		},
		Subtotal: 19.07,
		Tax:      1.53,
		Total:    20.60,
	}

	got := s.ToParsed()

	assert.Equal(t, "Whole Foods Market", got.Vendor)
	require.Len(t, got.Items, 3)
	assert.Equal(t, Item{Quantity: "2", Name: "Organic Bananas", Price: "1.58"}, got.Items[0])
	// Missing quantity defaults to 1.
	assert.Equal(t, Item{Quantity: "1", Name: "Oat Milk", Price: "4.50"}, got.Items[1])
	// Missing total falls back to unit price times quantity.
	assert.Equal(t, Item{Quantity: "1", Name: "Coffee Beans", Price: "12.99"}, got.Items[2])
}

func TestStructuredReceipt_ToParsedDefaults(t *testing.T) {
	got := (&StructuredReceipt{}).ToParsed()

	assert.Equal(t, "Unknown", got.Vendor)
	require.Len(t, got.Items, 1)
	assert.Equal(t, SentinelItem(), got.Items[0])
}

func TestStructuredReceipt_ToParsedDropsNamelessItems(t *testing.T) {
	s := &StructuredReceipt{
		Vendor: "Corner Store",
		Items:  []StructuredItem{{Name: "", Total: 3.00}},
	}

	got := s.ToParsed()

	require.Len(t, got.Items, 1)
	assert.Equal(t, SentinelItem(), got.Items[0])
}

func TestSentinelItem(t *testing.T) {
	item := SentinelItem()

	assert.Equal(t, "1", item.Quantity)
	assert.Equal(t, SentinelItemName, item.Name)
	assert.Equal(t, "0.00", item.Price)
}
