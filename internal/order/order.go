package order

import (
	"errors"
	"fmt"

	"github.com/hudsonjuan/digno-acai/internal/catalog"
	"github.com/hudsonjuan/digno-acai/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by the order engine.
var (
	ErrUnknownSize           = errors.New("unknown size")
	ErrUnknownItem           = errors.New("unknown item")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInsufficientPayment   = errors.New("insufficient payment")
	ErrPaymentMethodRequired = errors.New("payment method is required")
)

// Payment is the checkout selection. Tendered is only meaningful for cash.
type Payment struct {
	Method   string
	Tendered decimal.Decimal
}

// Order is the mutable cart for a single kiosk session. Selection slices keep
// insertion order and never contain duplicates. Total is derived and always
// recomputable from the other fields plus the catalog rules.
type Order struct {
	Size      catalog.Size
	Fruits    []string
	IceCreams []string
	Toppings  []string
	Notes     string
	Payment   *Payment
	Total     decimal.Decimal
}

// Engine applies selection events to an Order against a fixed catalog.
type Engine struct {
	cat *catalog.Catalog
}

// NewEngine creates an Engine for the given catalog.
func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// Catalog returns the catalog the engine prices against.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// NewOrder returns the default order: standard size, nothing selected.
func (e *Engine) NewOrder() *Order {
	o := &Order{Size: e.cat.DefaultSize()}
	e.RecomputeTotal(o)
	return o
}

// SelectSize sets the order size to the catalog entry for sizeID.
func (e *Engine) SelectSize(o *Order, sizeID string) error {
	s, ok := e.cat.Size(sizeID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSize, sizeID)
	}
	o.Size = s
	e.RecomputeTotal(o)
	return nil
}

// ToggleFruit adds or removes a fruit. Selection is never rejected for
// exceeding a count; fruits above the included threshold are priced, not
// blocked.
func (e *Engine) ToggleFruit(o *Order, fruitID string, selected bool) error {
	if _, ok := e.cat.Fruit(fruitID); !ok {
		return fmt.Errorf("%w: fruit %q", ErrUnknownItem, fruitID)
	}
	o.Fruits = toggle(o.Fruits, fruitID, selected)
	e.RecomputeTotal(o)
	return nil
}

// ToggleIceCream adds or removes an ice cream flavor.
func (e *Engine) ToggleIceCream(o *Order, iceCreamID string, selected bool) error {
	if _, ok := e.cat.IceCream(iceCreamID); !ok {
		return fmt.Errorf("%w: ice cream %q", ErrUnknownItem, iceCreamID)
	}
	o.IceCreams = toggle(o.IceCreams, iceCreamID, selected)
	e.RecomputeTotal(o)
	return nil
}

// ToggleTopping adds or removes a topping. Selecting a syrup-group topping
// first evicts any previously selected member of the group, so at most one
// syrup is ever present. Toppings carry no price.
func (e *Engine) ToggleTopping(o *Order, toppingID string, selected bool) error {
	if _, ok := e.cat.Topping(toppingID); !ok {
		return fmt.Errorf("%w: topping %q", ErrUnknownItem, toppingID)
	}
	if selected && e.cat.IsSyrup(toppingID) {
		kept := o.Toppings[:0]
		for _, t := range o.Toppings {
			if !e.cat.IsSyrup(t) {
				kept = append(kept, t)
			}
		}
		o.Toppings = kept
	}
	o.Toppings = toggle(o.Toppings, toppingID, selected)
	e.RecomputeTotal(o)
	return nil
}

// SetNotes replaces the free-text note verbatim.
func (e *Engine) SetNotes(o *Order, text string) {
	o.Notes = text
}

// SetPayment records the payment selection. Cash requires tendered >= total;
// for Pix the tendered amount is ignored.
func (e *Engine) SetPayment(o *Order, method string, tendered decimal.Decimal) error {
	switch method {
	case enum.PaymentMethodCash:
		if tendered.LessThan(o.Total) {
			return fmt.Errorf("%w: minimum R$ %s", ErrInsufficientPayment, o.Total.StringFixed(2))
		}
		o.Payment = &Payment{Method: method, Tendered: tendered}
	case enum.PaymentMethodPix:
		o.Payment = &Payment{Method: method}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}
	return nil
}

// RecomputeTotal re-derives the total from the selections and the catalog
// rules: size price plus per-unit overage above the included fruit and ice
// cream counts, rounded to 2 decimal places. A cash payment that no longer
// covers the new total is dropped, so tendered >= total holds across
// mutations and the customer is asked to pay again.
func (e *Engine) RecomputeTotal(o *Order) {
	rules := e.cat.Rules
	total := o.Size.Price
	if extra := len(o.Fruits) - rules.IncludedFruits; extra > 0 {
		total = total.Add(rules.ExtraFruitPrice.Mul(decimal.NewFromInt(int64(extra))))
	}
	if extra := len(o.IceCreams) - rules.IncludedIceCreams; extra > 0 {
		total = total.Add(rules.ExtraIceCreamPrice.Mul(decimal.NewFromInt(int64(extra))))
	}
	o.Total = total.Round(2)

	if p := o.Payment; p != nil && p.Method == enum.PaymentMethodCash && p.Tendered.LessThan(o.Total) {
		o.Payment = nil
	}
}

// toggle adds id to the slice when selected (keeping insertion order, no
// duplicates) or removes it otherwise.
func toggle(ids []string, id string, selected bool) []string {
	if selected {
		for _, v := range ids {
			if v == id {
				return ids
			}
		}
		return append(ids, id)
	}
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}
