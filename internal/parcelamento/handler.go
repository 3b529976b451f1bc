// internal/parcelamento/handler.go
package parcelamento

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/gestaolivre/api-financeiro/internal/auth"
	"github.com/gestaolivre/api-financeiro/internal/historico"
)

// Handler traduz os verbos HTTP em chamadas ao motor de parcelamento.
type Handler struct {
	Service   *Service
	Historico *historico.Repository
	validate  *validator.Validate
}

// NewHandler instancia o handler.
func NewHandler(service *Service, hist *historico.Repository) *Handler {
	return &Handler{
		Service:   service,
		Historico: hist,
		validate:  validator.New(),
	}
}

// POST /parcelamentos
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req CriacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Dados inválidos: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.EmpresaID = auth.EmpresaDoContexto(r.Context())
	req.UsuarioID = auth.UsuarioDoContexto(r.Context())

	plano, err := h.Service.CriarParcelamento(req)
	if err != nil {
		http.Error(w, "Erro ao criar parcelamento", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(plano)
}

// PUT /parcelamentos/{id}
// Aceita o id do grupo ou o id numérico da conta macro. Responde 200 com as
// estatísticas da edição, 400 quando a guarda de redução rejeita, 404 quando o
// grupo não existe.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req EdicaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Dados inválidos: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.EmpresaID = auth.EmpresaDoContexto(r.Context())
	req.UsuarioID = auth.UsuarioDoContexto(r.Context())

	res, err := h.Service.AplicarEdicao(id, req)
	if err != nil {
		var reducao *ErrReducaoInvalida
		switch {
		case errors.Is(err, ErrGrupoNaoEncontrado):
			http.Error(w, "Grupo de parcelamento não encontrado", http.StatusNotFound)
		case errors.As(err, &reducao):
			http.Error(w, reducao.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Erro ao atualizar parcelamento", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

// DELETE /parcelamentos/{id}
func (h *Handler) Excluir(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	empresaID := auth.EmpresaDoContexto(r.Context())

	res, err := h.Service.ExcluirGrupo(id, empresaID)
	if err != nil {
		if errors.Is(err, ErrGrupoNaoEncontrado) {
			http.Error(w, "Grupo de parcelamento não encontrado", http.StatusNotFound)
			return
		}
		http.Error(w, "Erro ao excluir parcelamento", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

// GET /parcelamentos/{id}/historico
func (h *Handler) ListarHistorico(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	empresaID := auth.EmpresaDoContexto(r.Context())

	grupoID, err := h.Service.GrupoID(id, empresaID)
	if err != nil {
		if errors.Is(err, ErrGrupoNaoEncontrado) {
			http.Error(w, "Grupo de parcelamento não encontrado", http.StatusNotFound)
			return
		}
		http.Error(w, "Erro ao resolver grupo", http.StatusInternalServerError)
		return
	}

	entradas, err := h.Historico.ListByGrupo(grupoID, empresaID)
	if err != nil {
		http.Error(w, "Erro ao buscar histórico", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entradas)
}
