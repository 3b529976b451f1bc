// internal/relatorio/handler.go
package relatorio

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gestaolivre/api-financeiro/internal/auth"
)

// Handler expõe os relatórios.
type Handler struct {
	Repo *Repository
}

// NewHandler instancia o handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// GET /relatorios/dre?ano=&mes=
func (h *Handler) DRE(w http.ResponseWriter, r *http.Request) {
	empresaID := auth.EmpresaDoContexto(r.Context())
	agora := time.Now()
	ano, mes := agora.Year(), int(agora.Month())
	if a, err := strconv.Atoi(r.URL.Query().Get("ano")); err == nil {
		ano = a
	}
	if m, err := strconv.Atoi(r.URL.Query().Get("mes")); err == nil {
		mes = m
	}

	dre, err := h.Repo.DRE(empresaID, ano, mes)
	if err != nil {
		http.Error(w, "Erro ao montar DRE", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(dre)
}

// GET /relatorios/balancete
func (h *Handler) Balancete(w http.ResponseWriter, r *http.Request) {
	empresaID := auth.EmpresaDoContexto(r.Context())
	linhas, err := h.Repo.Balancete(empresaID)
	if err != nil {
		http.Error(w, "Erro ao montar balancete", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(linhas)
}
