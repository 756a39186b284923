package entity

// CartLine is one add-to-cart action. Adding the same product twice
// produces two lines; there is no quantity field.
type CartLine struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// Cart is an ordered list of lines, keyed by a server-side session id.
// Insertion order is preserved for display and removal by index.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
}

// Total sums the line prices.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, line := range c.Lines {
		total += line.Price
	}
	return total
}
