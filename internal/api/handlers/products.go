package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/stylemuse/shopassist/internal/catalog"
)

type ProductHandler struct {
	catalog *catalog.Client
}

func NewProductHandler(c *catalog.Client) *ProductHandler {
	return &ProductHandler{catalog: c}
}

// Search exposes raw catalog search without style ranking, mostly for
// debugging and for clients that bring their own query.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q parameter required")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	products := h.catalog.Search(r.Context(), strings.Fields(q), limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": products, "count": len(products)})
}
