package cart

import "github.com/fjod/go_cart/storefront/internal/domain"

// Action is a cart transition. The set is closed: Add, Remove, SetQuantity,
// Clear and Load.
type Action interface {
	isAction()
}

// Add puts one unit of Product into the cart.
type Add struct {
	Product domain.Product
}

// Remove drops the line item of ProductID.
type Remove struct {
	ProductID int64
}

// SetQuantity overwrites the quantity of ProductID; non-positive removes it.
type SetQuantity struct {
	ProductID int64
	Quantity  int
}

// Clear empties the cart.
type Clear struct{}

// Load replaces the whole sequence, used for rehydration only.
type Load struct {
	Items []domain.CartItem
}

func (Add) isAction()         {}
func (Remove) isAction()      {}
func (SetQuantity) isAction() {}
func (Clear) isAction()       {}
func (Load) isAction()        {}

// Reduce applies a to items and returns the new sequence. It never modifies
// items and never panics; unknown actions return the state unchanged.
func Reduce(items []domain.CartItem, a Action) []domain.CartItem {
	switch a := a.(type) {
	case Add:
		next := clone(items)
		for i := range next {
			if next[i].ID == a.Product.ID {
				next[i].Quantity++
				return next
			}
		}
		return append(next, domain.CartItem{Product: a.Product, Quantity: 1})

	case Remove:
		return without(items, a.ProductID)

	case SetQuantity:
		if a.Quantity <= 0 {
			return without(items, a.ProductID)
		}
		next := clone(items)
		for i := range next {
			if next[i].ID == a.ProductID {
				next[i].Quantity = a.Quantity
			}
		}
		return next

	case Clear:
		return []domain.CartItem{}

	case Load:
		return clone(a.Items)

	default:
		return clone(items)
	}
}

func clone(items []domain.CartItem) []domain.CartItem {
	next := make([]domain.CartItem, len(items))
	copy(next, items)
	return next
}

func without(items []domain.CartItem, productID int64) []domain.CartItem {
	next := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.ID != productID {
			next = append(next, item)
		}
	}
	return next
}
