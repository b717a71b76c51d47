package catalog

import "github.com/shopspring/decimal"

// Size is a container tier with a fixed base price.
type Size struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Item is a selectable addition (fruit, ice cream flavor, or topping).
type Item struct {
	ID   string
	Name string
}

// Rules holds the pricing thresholds applied on top of the size price.
// All prices are >= 0.
type Rules struct {
	IncludedFruits     int
	IncludedIceCreams  int
	ExtraFruitPrice    decimal.Decimal
	ExtraIceCreamPrice decimal.Decimal
}

// Catalog is the immutable menu configuration for a shop.
type Catalog struct {
	Sizes     []Size
	Fruits    []Item
	IceCreams []Item
	Toppings  []Item
	Rules     Rules

	// SyrupGroup lists topping IDs that are mutually exclusive:
	// selecting one evicts any previously selected member.
	SyrupGroup []string
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Default returns the Digno Açaí menu.
func Default() *Catalog {
	return &Catalog{
		Sizes: []Size{
			{ID: "300ml", Name: "300ml", Price: price("14.00")},
			{ID: "400ml", Name: "400ml", Price: price("16.00")},
			{ID: "500ml", Name: "500ml", Price: price("18.00")},
		},
		Fruits: []Item{
			{ID: "morango", Name: "Morango"},
			{ID: "banana", Name: "Banana"},
			{ID: "kiwi", Name: "Kiwi"},
			{ID: "manga", Name: "Manga"},
			{ID: "abacaxi", Name: "Abacaxi"},
			{ID: "uva", Name: "Uva"},
		},
		IceCreams: []Item{
			{ID: "creme", Name: "Creme"},
			{ID: "chocolate", Name: "Chocolate"},
			{ID: "morango", Name: "Morango"},
			{ID: "flocos", Name: "Flocos"},
		},
		Toppings: []Item{
			{ID: "granola", Name: "Granola"},
			{ID: "leite-em-po", Name: "Leite em Pó"},
			{ID: "pacoca", Name: "Paçoca"},
			{ID: "granulado", Name: "Granulado"},
			{ID: "amendoim", Name: "Amendoim"},
			{ID: "leite-condensado", Name: "Leite Condensado"},
			{ID: "calda-chocolate", Name: "Calda de Chocolate"},
			{ID: "calda-morango", Name: "Calda de Morango"},
		},
		Rules: Rules{
			IncludedFruits:     2,
			IncludedIceCreams:  1,
			ExtraFruitPrice:    price("1.00"),
			ExtraIceCreamPrice: price("2.00"),
		},
		SyrupGroup: []string{"leite-condensado", "calda-chocolate", "calda-morango"},
	}
}

// Size returns the size with the given ID.
func (c *Catalog) Size(id string) (Size, bool) {
	for _, s := range c.Sizes {
		if s.ID == id {
			return s, true
		}
	}
	return Size{}, false
}

// DefaultSize returns the cheapest size, the standard choice for a new order.
func (c *Catalog) DefaultSize() Size {
	def := c.Sizes[0]
	for _, s := range c.Sizes[1:] {
		if s.Price.LessThan(def.Price) {
			def = s
		}
	}
	return def
}

// Fruit returns the fruit with the given ID.
func (c *Catalog) Fruit(id string) (Item, bool) { return findItem(c.Fruits, id) }

// IceCream returns the ice cream flavor with the given ID.
func (c *Catalog) IceCream(id string) (Item, bool) { return findItem(c.IceCreams, id) }

// Topping returns the topping with the given ID.
func (c *Catalog) Topping(id string) (Item, bool) { return findItem(c.Toppings, id) }

// IsSyrup reports whether the topping belongs to the mutually exclusive
// syrup group.
func (c *Catalog) IsSyrup(id string) bool {
	for _, s := range c.SyrupGroup {
		if s == id {
			return true
		}
	}
	return false
}

func findItem(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
