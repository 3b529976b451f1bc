// internal/cartao/model.go
package cartao

import (
	"time"

	"gorm.io/gorm"
)

// Cartao é um cartão de crédito da empresa. DiaFechamento define o corte das
// faturas; DiaVencimento, o vencimento da fatura fechada.
type Cartao struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Nome          string `gorm:"size:100;not null" json:"nome"`
	DiaFechamento int    `gorm:"not null;default:1" json:"diaFechamento"`
	DiaVencimento int    `gorm:"not null;default:10" json:"diaVencimento"`

	EmpresaID uint `gorm:"not null;index" json:"empresaId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fatura é o agregado mensal das contas vinculadas a um cartão.
type Fatura struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	CartaoID   uint    `gorm:"not null;index:idx_fatura_cartao_competencia,unique" json:"cartaoId"`
	Mes        int     `gorm:"not null;index:idx_fatura_cartao_competencia,unique" json:"mes"`
	Ano        int     `gorm:"not null;index:idx_fatura_cartao_competencia,unique" json:"ano"`
	ValorTotal float64 `gorm:"not null;default:0" json:"valorTotal"`

	EmpresaID uint `gorm:"not null;index" json:"empresaId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate cria as tabelas no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Cartao{}, &Fatura{})
}

// CompetenciaFatura resolve a competência (mês/ano) da fatura que cobre uma
// compra na data informada. Compra antes do dia de fechamento pertence à fatura
// do próprio mês; no dia de fechamento ou depois, cai na fatura do mês seguinte,
// com virada dezembro→janeiro avançando o ano.
func CompetenciaFatura(diaFechamento int, data time.Time) (mes int, ano int) {
	mes = int(data.Month())
	ano = data.Year()
	if data.Day() >= diaFechamento {
		mes++
		if mes > 12 {
			mes = 1
			ano++
		}
	}
	return mes, ano
}
