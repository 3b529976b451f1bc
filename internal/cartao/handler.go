// internal/cartao/handler.go
package cartao

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// Handler expõe o recálculo de fatura.
type Handler struct {
	Repo *Repository
}

// NewHandler instancia o handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// POST /cartoes/{id}/recalcular-fatura?referencia=2026-01-15
func (h *Handler) RecalcularFatura(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID do cartão inválido", http.StatusBadRequest)
		return
	}

	referencia := time.Now()
	if ref := r.URL.Query().Get("referencia"); ref != "" {
		parsed, err := time.Parse("2006-01-02", ref)
		if err != nil {
			http.Error(w, "Data de referência inválida, use AAAA-MM-DD", http.StatusBadRequest)
			return
		}
		referencia = parsed
	}

	fatura, err := h.Repo.RecalcularFatura(uint(id), referencia)
	if err != nil {
		http.Error(w, "Erro ao recalcular fatura", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(fatura)
}
