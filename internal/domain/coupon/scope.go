package coupon

// Scope is the set of products a coupon acts on: either the entire order or
// an explicit product set. The zero Scope covers the entire order.
type Scope struct {
	products map[string]struct{}
}

// EntireOrder returns a scope covering every order item.
func EntireOrder() Scope { return Scope{} }

// Products returns a scope limited to the given product ids. An empty id
// list degenerates to the entire order, matching how an absent scope is
// stored.
func Products(ids ...string) Scope {
	if len(ids) == 0 {
		return Scope{}
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Scope{products: set}
}

// IsEntireOrder reports whether the scope covers the whole order.
func (s Scope) IsEntireOrder() bool { return len(s.products) == 0 }

// Covers reports whether the product participates in the discount base.
func (s Scope) Covers(productID string) bool {
	if s.IsEntireOrder() {
		return true
	}
	_, ok := s.products[productID]
	return ok
}

// Intersects reports whether any of the given product ids is in scope.
func (s Scope) Intersects(productIDs []string) bool {
	if s.IsEntireOrder() {
		return true
	}
	for _, id := range productIDs {
		if _, ok := s.products[id]; ok {
			return true
		}
	}
	return false
}

// ProductIDs returns the scoped product ids, nil for an entire-order scope.
func (s Scope) ProductIDs() []string {
	if s.IsEntireOrder() {
		return nil
	}
	ids := make([]string, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	return ids
}
