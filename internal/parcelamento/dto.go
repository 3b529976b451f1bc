// internal/parcelamento/dto.go
package parcelamento

import (
	"time"

	"github.com/gestaolivre/api-financeiro/internal/conta"
)

// Modos de parcelamento aceitos no campo tipoParcelamento.
const (
	ModoAVista       = "avista"
	ModoValorTotal   = "valor_total"
	ModoValorParcela = "valor_parcela"
)

// CriacaoRequest descreve a criação de um plano de parcelamento.
type CriacaoRequest struct {
	Descricao          string    `json:"descricao" validate:"required"`
	ValorParcela       float64   `json:"valorParcela" validate:"required,gt=0"`
	PrimeiroVencimento time.Time `json:"primeiroVencimento" validate:"required"`
	TotalParcelas      int       `json:"totalParcelas" validate:"required,gte=2"`
	ParcelaInicial     int       `json:"parcelaInicial"` // default 1
	TipoParcelamento   string    `json:"tipoParcelamento" validate:"omitempty,oneof=avista valor_total valor_parcela"`

	CodigoTipo      string `json:"codigoTipo"`
	Beneficiario    string `json:"beneficiario"`
	Categoria       string `json:"categoria"`
	Subcategoria    string `json:"subcategoria"`
	Tipo            string `json:"tipo" validate:"omitempty,oneof=entrada saida"`
	CartaoID        *uint  `json:"cartaoId"`
	ContaBancariaID *uint  `json:"contaBancariaId"`

	// A flag de "já paga" vale apenas para a primeira parcela criada.
	PrimeiraPaga          bool       `json:"primeiraPaga"`
	DataPagamentoPrimeira *time.Time `json:"dataPagamentoPrimeira"`

	EmpresaID uint `json:"-"`
	UsuarioID uint `json:"-"`
}

// ParcelaEdicao é a instrução de edição de uma parcela individual.
// ID <= 0 indica criação de uma parcela nova. Valor e DataVencimento nulos
// preservam o que a parcela já tem: um payload que só marca pagamento não pode
// zerar valor nem vencimento.
type ParcelaEdicao struct {
	ID             int        `json:"id"`
	Valor          *float64   `json:"valor"`
	DataVencimento *time.Time `json:"dataVencimento"`
	Pago           bool       `json:"pago"`
	DataPagamento  *time.Time `json:"dataPagamento"`
	Status         string     `json:"status"`
}

// EdicaoRequest é o corpo do PUT de um grupo de parcelamento. Todos os campos
// são opcionais; cada etapa do motor só roda se o gatilho correspondente veio
// na requisição.
type EdicaoRequest struct {
	ValorTotal          *float64        `json:"valorTotal"`
	NovaQuantidade      *int            `json:"novaQuantidade"`
	TotalParcelas       *int            `json:"totalParcelas"` // alias aceito para novaQuantidade
	ParcelasAtualizadas []ParcelaEdicao `json:"parcelasAtualizadas"`
	TipoParcelamento    string          `json:"tipoParcelamento" validate:"omitempty,oneof=avista valor_total valor_parcela"`

	// Campos compartilhados: quando presentes, são gravados em todas as
	// parcelas e na macro, independentemente das etapas numéricas.
	Descricao    *string `json:"descricao"`
	Beneficiario *string `json:"beneficiario"`
	CodigoTipo   *string `json:"codigoTipo"`

	EmpresaID uint `json:"-"`
	UsuarioID uint `json:"-"`
}

// PlanoCriado é o retorno da criação de um parcelamento.
type PlanoCriado struct {
	Macro    *conta.Conta  `json:"macro"`
	Parcelas []conta.Conta `json:"parcelas"`
}

// ResumoMacro resume o estado final da conta macro após uma edição.
type ResumoMacro struct {
	ID            uint    `json:"id"`
	ValorTotal    float64 `json:"valorTotal"`
	TotalParcelas int     `json:"totalParcelas"`
}

// EdicaoResultado reporta o efeito de uma edição sobre o grupo.
type EdicaoResultado struct {
	Modificadas int          `json:"modificadas"`
	Criadas     int          `json:"criadas"`
	Removidas   int          `json:"removidas"`
	Macro       *ResumoMacro `json:"macro,omitempty"`
}
