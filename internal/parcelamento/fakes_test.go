package parcelamento

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/gestaolivre/api-financeiro/internal/cartao"
	"github.com/gestaolivre/api-financeiro/internal/centrocusto"
	"github.com/gestaolivre/api-financeiro/internal/conta"
	"github.com/gestaolivre/api-financeiro/internal/fluxocaixa"
	"github.com/gestaolivre/api-financeiro/internal/historico"
)

/* ========================= Fake em memória de ContaStore ========================= */

type memContas struct {
	seq    uint
	contas map[uint]*conta.Conta
}

func newMemContas() *memContas {
	return &memContas{contas: make(map[uint]*conta.Conta)}
}

func (m *memContas) FindByID(id uint) (*conta.Conta, error) {
	c, ok := m.contas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *c
	return &copia, nil
}

func (m *memContas) FindMacroByGrupo(grupoID string, empresaID uint) (*conta.Conta, error) {
	for _, c := range m.contas {
		if c.GrupoParcelamentoID == grupoID && c.IsContaMacro && c.EmpresaID == empresaID {
			copia := *c
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memContas) ListParcelasByGrupo(grupoID string, empresaID uint) ([]conta.Conta, error) {
	var parcelas []conta.Conta
	for _, c := range m.contas {
		if c.GrupoParcelamentoID == grupoID && !c.IsContaMacro && c.EmpresaID == empresaID {
			parcelas = append(parcelas, *c)
		}
	}
	sort.Slice(parcelas, func(i, j int) bool {
		if !parcelas[i].DataVencimento.Equal(parcelas[j].DataVencimento) {
			return parcelas[i].DataVencimento.Before(parcelas[j].DataVencimento)
		}
		return parcelas[i].ID < parcelas[j].ID
	})
	return parcelas, nil
}

func (m *memContas) Create(c *conta.Conta) error {
	m.seq++
	c.ID = m.seq
	copia := *c
	m.contas[c.ID] = &copia
	return nil
}

func (m *memContas) Update(c *conta.Conta) error {
	if _, ok := m.contas[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copia := *c
	m.contas[c.ID] = &copia
	return nil
}

func (m *memContas) UpdateFields(id uint, campos map[string]interface{}) error {
	c, ok := m.contas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range campos {
		switch k {
		case "valor":
			c.Valor = v.(float64)
		case "valor_total":
			c.ValorTotal = v.(float64)
		case "total_parcelas":
			c.TotalParcelas = v.(int)
		case "numero_parcela":
			c.NumeroParcela = v.(string)
		case "descricao":
			c.Descricao = v.(string)
		case "beneficiario":
			c.Beneficiario = v.(string)
		case "codigo_tipo":
			c.CodigoTipo = v.(string)
		case "parent_id":
			id := v.(uint)
			c.ParentID = &id
		case "socio_responsavel_id":
			if v == nil {
				c.SocioResponsavelID = nil
			} else {
				c.SocioResponsavelID = v.(*uint)
			}
		case "data_vencimento":
			c.DataVencimento = v.(time.Time)
		case "pago":
			c.Pago = v.(bool)
		case "status":
			c.Status = v.(string)
		case "data_pagamento":
			if v == nil {
				c.DataPagamento = nil
			} else {
				c.DataPagamento = v.(*time.Time)
			}
		default:
			return errors.New("campo não suportado pelo fake: " + k)
		}
	}
	return nil
}

func (m *memContas) DeleteByID(id uint) error {
	if _, ok := m.contas[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.contas, id)
	return nil
}

/* ========================= Fake de CentroCustoStore ========================= */

type incremento struct {
	Sigla string
	Campo string
	Delta float64
}

type memCentros struct {
	porSigla    map[string]*centrocusto.CentroCusto
	incrementos []incremento
}

func newMemCentros(centros ...*centrocusto.CentroCusto) *memCentros {
	m := &memCentros{porSigla: make(map[string]*centrocusto.CentroCusto)}
	for _, cc := range centros {
		m.porSigla[cc.Sigla] = cc
	}
	return m
}

func (m *memCentros) FindBySigla(sigla string, _ uint) (*centrocusto.CentroCusto, error) {
	cc, ok := m.porSigla[sigla]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *cc
	return &copia, nil
}

func (m *memCentros) AcrescentarComPropagacao(sigla string, empresaID uint, campo string, delta float64) (*centrocusto.CentroCusto, error) {
	cc, err := m.FindBySigla(sigla, empresaID)
	if err != nil {
		return nil, err
	}
	m.incrementos = append(m.incrementos, incremento{Sigla: sigla, Campo: campo, Delta: delta})
	return cc, nil
}

/* ========================= Fake de FluxoStore ========================= */

type memFluxo struct {
	lancamentos []fluxocaixa.Lancamento
	recalculos  int
}

func (m *memFluxo) Create(l *fluxocaixa.Lancamento) error {
	m.lancamentos = append(m.lancamentos, *l)
	return nil
}

func (m *memFluxo) DeleteByConta(contaID uint) error {
	restantes := m.lancamentos[:0]
	for _, l := range m.lancamentos {
		if l.ContaID == nil || *l.ContaID != contaID {
			restantes = append(restantes, l)
		}
	}
	m.lancamentos = restantes
	return nil
}

func (m *memFluxo) RecalcularSaldos(_ uint) error {
	m.recalculos++
	return nil
}

/* ========================= Fake de HistoricoStore ========================= */

type memHistorico struct {
	entradas []historico.HistoricoParcelamento
	falhar   bool
}

func (m *memHistorico) Create(h *historico.HistoricoParcelamento) error {
	if m.falhar {
		return errors.New("falha simulada de histórico")
	}
	m.entradas = append(m.entradas, *h)
	return nil
}

/* ========================= Fakes de recalculadoras ========================= */

type memFaturas struct {
	chamadas []struct {
		CartaoID uint
		Ref      time.Time
	}
}

func (m *memFaturas) RecalcularFatura(cartaoID uint, ref time.Time) (*cartao.Fatura, error) {
	m.chamadas = append(m.chamadas, struct {
		CartaoID uint
		Ref      time.Time
	}{cartaoID, ref})
	return &cartao.Fatura{CartaoID: cartaoID, Mes: int(ref.Month()), Ano: ref.Year()}, nil
}

type memProLabore struct {
	chamadas []uint
}

func (m *memProLabore) Recalcular(centroCustoID uint, _ time.Time) error {
	m.chamadas = append(m.chamadas, centroCustoID)
	return nil
}
