package order

import (
	"encoding/json"

	"github.com/hudsonjuan/digno-acai/internal/enum"
	"github.com/shopspring/decimal"
)

// snapshot is the persisted JSON shape of an Order. Every field is decoded
// independently so one malformed field never invalidates the rest.
type snapshot struct {
	Size      json.RawMessage `json:"size"`
	Fruits    json.RawMessage `json:"fruits"`
	IceCreams json.RawMessage `json:"ice_creams"`
	Toppings  json.RawMessage `json:"toppings"`
	Notes     json.RawMessage `json:"notes"`
	Payment   json.RawMessage `json:"payment"`
	Total     json.RawMessage `json:"total"`
}

type snapshotSize struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type snapshotPayment struct {
	Method   string          `json:"method"`
	Tendered decimal.Decimal `json:"cash_tendered"`
}

// Snapshot serializes the order for the device-persisted slot.
func (e *Engine) Snapshot(o *Order) []byte {
	snap := struct {
		Size      snapshotSize     `json:"size"`
		Fruits    []string         `json:"fruits"`
		IceCreams []string         `json:"ice_creams"`
		Toppings  []string         `json:"toppings"`
		Notes     string           `json:"notes"`
		Payment   *snapshotPayment `json:"payment,omitempty"`
		Total     decimal.Decimal  `json:"total"`
	}{
		Size:      snapshotSize{ID: o.Size.ID, Name: o.Size.Name, Price: o.Size.Price},
		Fruits:    emptyNotNil(o.Fruits),
		IceCreams: emptyNotNil(o.IceCreams),
		Toppings:  emptyNotNil(o.Toppings),
		Notes:     o.Notes,
		Total:     o.Total,
	}
	if o.Payment != nil {
		snap.Payment = &snapshotPayment{Method: o.Payment.Method, Tendered: o.Payment.Tendered}
	}
	blob, err := json.Marshal(snap)
	if err != nil {
		// Only reachable with a broken Order value; callers treat an empty
		// blob as "nothing persisted".
		return nil
	}
	return blob
}

// Restore rebuilds an Order from a persisted snapshot. It never fails:
// missing or malformed fields fall back to defaults field by field, unknown
// item IDs are dropped, the syrup exclusivity invariant is re-applied, and
// the total is always re-derived instead of trusting the persisted value.
func (e *Engine) Restore(blob []byte) *Order {
	o := e.NewOrder()
	if len(blob) == 0 {
		return o
	}

	var snap snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return o
	}

	var size snapshotSize
	if err := json.Unmarshal(snap.Size, &size); err == nil {
		// Resolve against the current catalog so stale persisted prices
		// never survive a menu change.
		if s, ok := e.cat.Size(size.ID); ok {
			o.Size = s
		}
	}

	o.Fruits = restoreIDs(snap.Fruits, func(id string) bool {
		_, ok := e.cat.Fruit(id)
		return ok
	})
	o.IceCreams = restoreIDs(snap.IceCreams, func(id string) bool {
		_, ok := e.cat.IceCream(id)
		return ok
	})

	syrupSeen := false
	o.Toppings = restoreIDs(snap.Toppings, func(id string) bool {
		if _, ok := e.cat.Topping(id); !ok {
			return false
		}
		if e.cat.IsSyrup(id) {
			if syrupSeen {
				return false
			}
			syrupSeen = true
		}
		return true
	})

	var notes string
	if err := json.Unmarshal(snap.Notes, &notes); err == nil {
		o.Notes = notes
	}

	e.RecomputeTotal(o)

	var payment snapshotPayment
	if err := json.Unmarshal(snap.Payment, &payment); err == nil {
		switch payment.Method {
		case enum.PaymentMethodPix:
			o.Payment = &Payment{Method: payment.Method}
		case enum.PaymentMethodCash:
			// A persisted cash payment that no longer covers the total is
			// dropped; checkout will ask again.
			if !payment.Tendered.LessThan(o.Total) {
				o.Payment = &Payment{Method: payment.Method, Tendered: payment.Tendered}
			}
		}
	}

	return o
}

// restoreIDs decodes a persisted ID list, keeping insertion order while
// dropping duplicates and anything the keep filter rejects.
func restoreIDs(raw json.RawMessage, keep func(id string) bool) []string {
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] || !keep(id) {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func emptyNotNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
