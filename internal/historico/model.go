// internal/historico/model.go
package historico

import (
	"time"

	"gorm.io/gorm"
)

// Tipos de alteração registrados no histórico de um parcelamento.
const (
	TipoQuantidade       = "QUANTIDADE"
	TipoValorTotal       = "VALOR_TOTAL"
	TipoEdicaoIndividual = "EDICAO_INDIVIDUAL"
)

// HistoricoParcelamento é a trilha de auditoria de um grupo de parcelamento:
// uma entrada por edição que produziu alteração detectável, com o snapshot
// anterior serializado em JSON.
type HistoricoParcelamento struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	GrupoParcelamentoID string `gorm:"size:64;not null;index" json:"grupoParcelamentoId"`
	ContaMacroID        *uint  `gorm:"index" json:"contaMacroId"`
	TipoAlteracao       string `gorm:"size:30;not null" json:"tipoAlteracao"`
	Descricao           string `gorm:"size:500" json:"descricao"`
	SnapshotAnterior    string `gorm:"type:text" json:"snapshotAnterior"`

	ValorTotalAnterior float64 `gorm:"not null;default:0" json:"valorTotalAnterior"`
	ValorTotalNovo     float64 `gorm:"not null;default:0" json:"valorTotalNovo"`
	ParcelasAnterior   int     `gorm:"not null;default:0" json:"parcelasAnterior"`
	ParcelasNovo       int     `gorm:"not null;default:0" json:"parcelasNovo"`

	UsuarioID uint `gorm:"index" json:"usuarioId"`
	EmpresaID uint `gorm:"not null;index" json:"empresaId"`

	CreatedAt time.Time `json:"createdAt"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&HistoricoParcelamento{})
}
