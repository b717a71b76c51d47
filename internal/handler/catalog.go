package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hudsonjuan/digno-acai/internal/catalog"
)

// CatalogHandler serves the static menu so the shell can render the form.
type CatalogHandler struct {
	cat *catalog.Catalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", h.Get)
}

// --- Response types ---

type catalogResponse struct {
	Sizes      []sizeResponse `json:"sizes"`
	Fruits     []itemResponse `json:"fruits"`
	IceCreams  []itemResponse `json:"ice_creams"`
	Toppings   []itemResponse `json:"toppings"`
	Rules      rulesResponse  `json:"rules"`
	SyrupGroup []string       `json:"syrup_group"`
}

type itemResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type rulesResponse struct {
	IncludedFruits     int    `json:"included_fruits"`
	IncludedIceCreams  int    `json:"included_ice_creams"`
	ExtraFruitPrice    string `json:"extra_fruit_price"`
	ExtraIceCreamPrice string `json:"extra_ice_cream_price"`
}

// Get handles GET /catalog.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := h.cat
	resp := catalogResponse{
		Rules: rulesResponse{
			IncludedFruits:     c.Rules.IncludedFruits,
			IncludedIceCreams:  c.Rules.IncludedIceCreams,
			ExtraFruitPrice:    c.Rules.ExtraFruitPrice.StringFixed(2),
			ExtraIceCreamPrice: c.Rules.ExtraIceCreamPrice.StringFixed(2),
		},
		SyrupGroup: c.SyrupGroup,
	}
	for _, s := range c.Sizes {
		resp.Sizes = append(resp.Sizes, sizeResponse{ID: s.ID, Name: s.Name, Price: s.Price.StringFixed(2)})
	}
	for _, it := range c.Fruits {
		resp.Fruits = append(resp.Fruits, itemResponse{ID: it.ID, Name: it.Name})
	}
	for _, it := range c.IceCreams {
		resp.IceCreams = append(resp.IceCreams, itemResponse{ID: it.ID, Name: it.Name})
	}
	for _, it := range c.Toppings {
		resp.Toppings = append(resp.Toppings, itemResponse{ID: it.ID, Name: it.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}
