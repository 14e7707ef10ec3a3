// Package cart holds the per-session shopping cart and the stores that keep it
// between requests. The cart is never written to the relational database.
package cart

import (
	"sort"
	"strconv"
)

// MaxQuantity is the ceiling for a single line. Merges saturate here.
const MaxQuantity = 9999

// Cart maps a product id to the quantity chosen in this session.
type Cart struct {
	Items map[string]int `json:"items"`
}

type Line struct {
	ProductID string
	Quantity  int
}

func New() *Cart {
	return &Cart{Items: map[string]int{}}
}

// Add merges quantity into an existing entry or creates it. A quantity below 1
// counts as 1 and a line never exceeds MaxQuantity. There is no stock check.
func (c *Cart) Add(productID string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	if c.Items == nil {
		c.Items = map[string]int{}
	}
	cur := c.Items[productID]
	if quantity > MaxQuantity-cur {
		c.Items[productID] = MaxQuantity
		return
	}
	c.Items[productID] = cur + quantity
}

func (c *Cart) Clear() {
	c.Items = map[string]int{}
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) Quantity(productID string) int {
	if c == nil {
		return 0
	}
	return c.Items[productID]
}

// Lines returns the entries ordered by product id, numerically when both ids are numbers.
func (c *Cart) Lines() []Line {
	if c == nil {
		return nil
	}
	out := make([]Line, 0, len(c.Items))
	for id, q := range c.Items {
		out = append(out, Line{ProductID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.ParseUint(out[i].ProductID, 10, 64)
		b, errB := strconv.ParseUint(out[j].ProductID, 10, 64)
		if errA == nil && errB == nil {
			return a < b
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}
