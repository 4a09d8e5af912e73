package rest

import (
	"net/http"
	"strconv"

	"boutique-be/internal/product"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := product.ListOptions{
		Search:  q.Get("search"),
		InStock: q.Get("inStock") == "true",
		Page:    queryInt32(q.Get("page")),
		Limit:   queryInt32(q.Get("limit")),
	}

	res, err := h.products.ListProducts(r.Context(), opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// queryInt32 returns 0 for missing or malformed values so the service
// applies its defaults.
func queryInt32(v string) int32 {
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0
	}
	return int32(n)
}
