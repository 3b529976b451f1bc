// internal/parcelamento/stores.go
package parcelamento

import (
	"time"

	"github.com/gestaolivre/api-financeiro/internal/cartao"
	"github.com/gestaolivre/api-financeiro/internal/centrocusto"
	"github.com/gestaolivre/api-financeiro/internal/conta"
	"github.com/gestaolivre/api-financeiro/internal/fluxocaixa"
	"github.com/gestaolivre/api-financeiro/internal/historico"
)

// ContaStore é a persistência de contas consumida pelo motor. O *Repository
// de conta satisfaz a interface diretamente.
type ContaStore interface {
	FindByID(id uint) (*conta.Conta, error)
	FindMacroByGrupo(grupoID string, empresaID uint) (*conta.Conta, error)
	ListParcelasByGrupo(grupoID string, empresaID uint) ([]conta.Conta, error)
	Create(c *conta.Conta) error
	Update(c *conta.Conta) error
	UpdateFields(id uint, campos map[string]interface{}) error
	DeleteByID(id uint) error
}

// CentroCustoStore é a persistência de agregados de centro de custo.
type CentroCustoStore interface {
	FindBySigla(sigla string, empresaID uint) (*centrocusto.CentroCusto, error)
	AcrescentarComPropagacao(sigla string, empresaID uint, campo string, delta float64) (*centrocusto.CentroCusto, error)
}

// FluxoStore é o razão do fluxo de caixa.
type FluxoStore interface {
	Create(l *fluxocaixa.Lancamento) error
	DeleteByConta(contaID uint) error
	RecalcularSaldos(empresaID uint) error
}

// HistoricoStore persiste a trilha de auditoria.
type HistoricoStore interface {
	Create(h *historico.HistoricoParcelamento) error
}

// FaturaRecalculadora refaz o agregado mensal de fatura de um cartão.
type FaturaRecalculadora interface {
	RecalcularFatura(cartaoID uint, referencia time.Time) (*cartao.Fatura, error)
}

// ProLaboreRecalculadora refaz o pró-labore líquido de um sócio.
type ProLaboreRecalculadora interface {
	Recalcular(centroCustoID uint, referencia time.Time) error
}
