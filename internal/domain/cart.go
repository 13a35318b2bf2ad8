package domain

// CartItem is a line item: the product fields flattened next to the quantity,
// which is the shape persisted under the "cart" key.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}
