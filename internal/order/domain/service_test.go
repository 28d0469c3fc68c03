package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRequestAcceptsNumericProductID(t *testing.T) {
	cases := map[string]string{
		`{"product_id":1784512390871244800,"quantity":2}`:   "1784512390871244800",
		`{"product_id":"1784512390871244800","quantity":2}`: "1784512390871244800",
		`{"product_id":123,"quantity":2}`:                   "123",
		`{"product_id":null,"quantity":2}`:                  "",
		`{"quantity":2}`:                                    "",
		`{"product_id":true,"quantity":2}`:                  "true",
	}
	for body, want := range cases {
		var item ItemRequest
		require.NoError(t, json.Unmarshal([]byte(body), &item), body)
		assert.Equal(t, want, item.ProductID, body)
		assert.Equal(t, 2, item.Quantity, body)
	}
}

func TestCreateRequestDecodesItems(t *testing.T) {
	var req CreateRequest
	body := `{"first_name":"Amel","items":[{"product_id":7,"quantity":1},{"product_id":"8","quantity":3}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, "Amel", req.FirstName)
	require.Len(t, req.Items, 2)
	assert.Equal(t, ItemRequest{ProductID: "7", Quantity: 1}, req.Items[0])
	assert.Equal(t, ItemRequest{ProductID: "8", Quantity: 3}, req.Items[1])
}

func TestItemRequestRejectsBadQuantity(t *testing.T) {
	var item ItemRequest
	assert.Error(t, json.Unmarshal([]byte(`{"product_id":1,"quantity":"two"}`), &item))
}
