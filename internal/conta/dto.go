// internal/conta/dto.go
package conta

import (
	"time"
)

// CriacaoDTO descreve a criação de uma conta avulsa (sem parcelamento).
type CriacaoDTO struct {
	Descricao      string     `json:"descricao" validate:"required"`
	Valor          float64    `json:"valor" validate:"required,gt=0"`
	DataVencimento time.Time  `json:"dataVencimento" validate:"required"`
	Pago           bool       `json:"pago"`
	DataPagamento  *time.Time `json:"dataPagamento"`

	CodigoTipo      string `json:"codigoTipo"`
	Beneficiario    string `json:"beneficiario"`
	Categoria       string `json:"categoria"`
	Subcategoria    string `json:"subcategoria"`
	Tipo            string `json:"tipo" validate:"omitempty,oneof=entrada saida"`
	CartaoID        *uint  `json:"cartaoId"`
	ContaBancariaID *uint  `json:"contaBancariaId"`
}

// AtualizacaoDTO atualiza os campos simples de uma conta avulsa.
type AtualizacaoDTO struct {
	Descricao      string     `json:"descricao"`
	Valor          float64    `json:"valor"`
	DataVencimento time.Time  `json:"dataVencimento"`
	Pago           bool       `json:"pago"`
	DataPagamento  *time.Time `json:"dataPagamento"`
	Status         string     `json:"status" validate:"omitempty,oneof=pendente pago cancelado"`

	CodigoTipo   string `json:"codigoTipo"`
	Beneficiario string `json:"beneficiario"`
	Categoria    string `json:"categoria"`
	Subcategoria string `json:"subcategoria"`
}
