// internal/fluxocaixa/model.go
package fluxocaixa

import (
	"time"

	"gorm.io/gorm"
)

// Direções de um lançamento.
const (
	TipoEntrada = "entrada"
	TipoSaida   = "saida"
)

// Lancamento é uma linha do fluxo de caixa. SaldoAcumulado é a soma corrente
// assinada de todos os lançamentos anteriores em ordem cronológica, inclusive
// este; campo derivado, recalculado integralmente após remoções no meio da série.
type Lancamento struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Data           time.Time `gorm:"not null;index" json:"data"`
	Codigo         string    `gorm:"size:30" json:"codigo"`
	Contraparte    string    `gorm:"size:255" json:"contraparte"`
	Valor          float64   `gorm:"not null;default:0" json:"valor"`
	Tipo           string    `gorm:"size:10;not null" json:"tipo"`
	SaldoAcumulado float64   `gorm:"not null;default:0" json:"saldoAcumulado"`
	ContaID        *uint     `gorm:"index" json:"contaId"`
	CodigoTipo     string    `gorm:"size:30;index" json:"codigoTipo"`

	EmpresaID uint `gorm:"not null;index" json:"empresaId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Lancamento{})
}
