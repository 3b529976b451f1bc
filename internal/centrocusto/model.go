// internal/centrocusto/model.go
package centrocusto

import (
	"time"

	"gorm.io/gorm"
)

// Campos agregados que podem ser incrementados.
const (
	CampoPrevisto         = "previsto"
	CampoRealizado        = "realizado"
	CampoDescontoPrevisto = "desconto_previsto"
	CampoDescontoReal     = "desconto_real"
)

// CentroCusto acumula totais previstos e realizados por sigla, com roll-up
// hierárquico opcional via ParentID. Centros do tipo sócio (IsSocio) acumulam
// também descontos e disparam recálculo de pró-labore quando alterados.
type CentroCusto struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	Sigla            string  `gorm:"size:30;not null;index:idx_cc_sigla_empresa,unique" json:"sigla"`
	Nome             string  `gorm:"size:255;not null" json:"nome"`
	Previsto         float64 `gorm:"not null;default:0" json:"previsto"`
	Realizado        float64 `gorm:"not null;default:0" json:"realizado"`
	DescontoPrevisto float64 `gorm:"not null;default:0" json:"descontoPrevisto"`
	DescontoReal     float64 `gorm:"not null;default:0" json:"descontoReal"`
	ParentID         *uint   `gorm:"index" json:"parentId"`
	IsSocio          bool    `gorm:"not null;default:false" json:"isSocio"`

	EmpresaID uint `gorm:"not null;index:idx_cc_sigla_empresa,unique" json:"empresaId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&CentroCusto{})
}
