// internal/conta/handler.go
package conta

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gestaolivre/api-financeiro/internal/auth"
	"github.com/gestaolivre/api-financeiro/internal/centrocusto"
	"github.com/gestaolivre/api-financeiro/internal/fluxocaixa"
	"github.com/gestaolivre/api-financeiro/internal/utils"
)

// Handler expõe o CRUD de contas avulsas. Grupos de parcelamento são mutados
// exclusivamente pelos endpoints de parcelamento.
type Handler struct {
	Repo     *Repository
	Centros  *centrocusto.Repository
	Fluxo    *fluxocaixa.Repository
	Logger   *logrus.Logger
	validate *validator.Validate
}

// NewHandler instancia o handler.
func NewHandler(repo *Repository, centros *centrocusto.Repository, fluxo *fluxocaixa.Repository, logger *logrus.Logger) *Handler {
	return &Handler{Repo: repo, Centros: centros, Fluxo: fluxo, Logger: logger, validate: validator.New()}
}

// GET /contas
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	empresaID := auth.EmpresaDoContexto(r.Context())
	q := r.URL.Query()

	f := Filtro{
		EmpresaID:  empresaID,
		Status:     q.Get("status"),
		CodigoTipo: q.Get("codigoTipo"),
	}
	if ano, err := strconv.Atoi(q.Get("ano")); err == nil {
		f.Ano = ano
	}
	if mes, err := strconv.Atoi(q.Get("mes")); err == nil {
		f.Mes = mes
	}
	if cid, err := strconv.Atoi(q.Get("cartaoId")); err == nil {
		id := uint(cid)
		f.CartaoID = &id
	}
	f.SomenteRaiz = q.Get("somenteRaiz") == "true"

	contas, err := h.Repo.List(f)
	if err != nil {
		http.Error(w, "Erro ao buscar contas", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(contas)
}

// POST /contas: caminho simples de conta única, sem macro.
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var in CriacaoDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		http.Error(w, "Dados inválidos: "+err.Error(), http.StatusBadRequest)
		return
	}
	empresaID := auth.EmpresaDoContexto(r.Context())
	if in.Tipo == "" {
		in.Tipo = fluxocaixa.TipoSaida
	}

	c := &Conta{
		Descricao:       in.Descricao,
		Valor:           in.Valor,
		DataVencimento:  in.DataVencimento,
		Status:          StatusPendente,
		CodigoTipo:      in.CodigoTipo,
		Beneficiario:    in.Beneficiario,
		Categoria:       in.Categoria,
		Subcategoria:    in.Subcategoria,
		Tipo:            in.Tipo,
		CartaoID:        in.CartaoID,
		ContaBancariaID: in.ContaBancariaID,
		EmpresaID:       empresaID,
	}
	if in.Pago {
		dp := in.DataVencimento
		if in.DataPagamento != nil {
			dp = *in.DataPagamento
		}
		c.Pago = true
		c.Status = StatusPago
		c.DataPagamento = &dp
	}

	if err := h.Repo.Create(c); err != nil {
		http.Error(w, "Erro ao criar conta", http.StatusInternalServerError)
		return
	}

	if c.CodigoTipo != "" {
		h.efeitoAgregado(c, centrocusto.CampoPrevisto, centrocusto.CampoDescontoPrevisto, c.Valor)
	}
	if c.Pago {
		h.registrarFluxo(c)
		if c.CodigoTipo != "" {
			h.efeitoAgregado(c, centrocusto.CampoRealizado, centrocusto.CampoDescontoReal, c.Valor)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(c)
}

// GET /contas/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID da conta inválido", http.StatusBadRequest)
		return
	}
	c, err := h.Repo.FindByID(uint(id))
	if err != nil || c.EmpresaID != auth.EmpresaDoContexto(r.Context()) {
		http.Error(w, "Conta não encontrada", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// PUT /contas/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID da conta inválido", http.StatusBadRequest)
		return
	}
	c, err := h.Repo.FindByID(uint(id))
	if err != nil || c.EmpresaID != auth.EmpresaDoContexto(r.Context()) {
		http.Error(w, "Conta não encontrada", http.StatusNotFound)
		return
	}
	if c.GrupoParcelamentoID != "" {
		http.Error(w, "Conta parcelada: use o endpoint de parcelamento", http.StatusBadRequest)
		return
	}

	var in AtualizacaoDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		http.Error(w, "Dados inválidos: "+err.Error(), http.StatusBadRequest)
		return
	}

	mudouStatus := c.Pago != in.Pago
	valorAnterior := c.Valor

	c.Descricao = in.Descricao
	c.Valor = in.Valor
	c.DataVencimento = in.DataVencimento
	c.Pago = in.Pago
	c.CodigoTipo = in.CodigoTipo
	c.Beneficiario = in.Beneficiario
	c.Categoria = in.Categoria
	c.Subcategoria = in.Subcategoria
	if in.Status != "" {
		c.Status = in.Status
	} else if in.Pago {
		c.Status = StatusPago
	} else {
		c.Status = StatusPendente
	}
	if in.Pago {
		dp := in.DataVencimento
		if in.DataPagamento != nil {
			dp = *in.DataPagamento
		}
		c.DataPagamento = &dp
	} else {
		c.DataPagamento = nil
	}

	if err := h.Repo.Update(c); err != nil {
		http.Error(w, "Erro ao atualizar conta", http.StatusInternalServerError)
		return
	}

	if c.CodigoTipo != "" && valorAnterior != c.Valor {
		h.efeitoAgregado(c, centrocusto.CampoPrevisto, centrocusto.CampoDescontoPrevisto, c.Valor-valorAnterior)
	}
	if mudouStatus {
		if c.Pago {
			h.registrarFluxo(c)
			if c.CodigoTipo != "" {
				h.efeitoAgregado(c, centrocusto.CampoRealizado, centrocusto.CampoDescontoReal, c.Valor)
			}
		} else {
			utils.BestEffort(h.Logger, "remocao-fluxo", logrus.Fields{"contaId": c.ID}, func() error {
				if err := h.Fluxo.DeleteByConta(c.ID); err != nil {
					return err
				}
				return h.Fluxo.RecalcularSaldos(c.EmpresaID)
			})
			if c.CodigoTipo != "" {
				h.efeitoAgregado(c, centrocusto.CampoRealizado, centrocusto.CampoDescontoReal, -valorAnterior)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// DELETE /contas/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID da conta inválido", http.StatusBadRequest)
		return
	}
	c, err := h.Repo.FindByID(uint(id))
	if err != nil || c.EmpresaID != auth.EmpresaDoContexto(r.Context()) {
		http.Error(w, "Conta não encontrada", http.StatusNotFound)
		return
	}
	if c.GrupoParcelamentoID != "" {
		http.Error(w, "Conta parcelada: use o endpoint de parcelamento", http.StatusBadRequest)
		return
	}

	if c.Pago {
		utils.BestEffort(h.Logger, "remocao-fluxo", logrus.Fields{"contaId": c.ID}, func() error {
			if err := h.Fluxo.DeleteByConta(c.ID); err != nil {
				return err
			}
			return h.Fluxo.RecalcularSaldos(c.EmpresaID)
		})
		if c.CodigoTipo != "" {
			h.efeitoAgregado(c, centrocusto.CampoRealizado, centrocusto.CampoDescontoReal, -c.Valor)
		}
	}
	if c.CodigoTipo != "" {
		h.efeitoAgregado(c, centrocusto.CampoPrevisto, centrocusto.CampoDescontoPrevisto, -c.Valor)
	}

	if err := h.Repo.DeleteByID(c.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Conta não encontrada", http.StatusNotFound)
			return
		}
		http.Error(w, "Erro ao deletar conta", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// efeitoAgregado aplica o delta ao campo certo do centro de custo (centros de
// sócio usam os campos de desconto) com propagação aos ancestrais, best-effort.
func (h *Handler) efeitoAgregado(c *Conta, campo, campoSocio string, delta float64) {
	utils.BestEffort(h.Logger, "centro-custo", logrus.Fields{"contaId": c.ID, "sigla": c.CodigoTipo}, func() error {
		cc, err := h.Centros.FindBySigla(c.CodigoTipo, c.EmpresaID)
		if err != nil {
			return err
		}
		alvo := campo
		if cc.IsSocio {
			alvo = campoSocio
		}
		_, err = h.Centros.AcrescentarComPropagacao(c.CodigoTipo, c.EmpresaID, alvo, delta)
		return err
	})
}

func (h *Handler) registrarFluxo(c *Conta) {
	utils.BestEffort(h.Logger, "fluxo-caixa", logrus.Fields{"contaId": c.ID}, func() error {
		data := c.DataVencimento
		if c.DataPagamento != nil {
			data = *c.DataPagamento
		}
		id := c.ID
		if err := h.Fluxo.Create(&fluxocaixa.Lancamento{
			Data:        data,
			Codigo:      fmt.Sprintf("CONTA %d", c.ID),
			Contraparte: c.Beneficiario,
			Valor:       c.Valor,
			Tipo:        c.Tipo,
			ContaID:     &id,
			CodigoTipo:  c.CodigoTipo,
			EmpresaID:   c.EmpresaID,
		}); err != nil {
			return err
		}
		return h.Fluxo.RecalcularSaldos(c.EmpresaID)
	})
}
