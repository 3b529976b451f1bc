// internal/conta/model.go
package conta

import (
	"time"

	"gorm.io/gorm"
)

// Status possíveis de uma conta.
const (
	StatusPendente  = "pendente"
	StatusPago      = "pago"
	StatusCancelado = "cancelado"
)

// Conta representa um lançamento a pagar ou a receber. Uma conta pode ser
// avulsa, uma parcela de um parcelamento (ParentID aponta para a conta macro)
// ou a própria conta macro que agrega o plano inteiro (IsContaMacro).
type Conta struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Descricao      string     `gorm:"size:255;not null" json:"descricao"`
	Valor          float64    `gorm:"not null;default:0" json:"valor"`
	DataVencimento time.Time  `gorm:"not null;index" json:"dataVencimento"`
	Pago           bool       `gorm:"not null;default:false;index" json:"pago"`
	DataPagamento  *time.Time `json:"dataPagamento"`
	ValorPago      *float64   `json:"valorPago"`
	Status         string     `gorm:"size:50;not null;default:'pendente';index" json:"status"`

	// Campos de parcelamento
	NumeroParcela       string  `gorm:"size:20" json:"numeroParcela"`
	TotalParcelas       int     `gorm:"not null;default:0" json:"totalParcelas"`
	GrupoParcelamentoID string  `gorm:"size:64;index" json:"grupoParcelamentoId"`
	TipoParcelamento    string  `gorm:"size:30" json:"tipoParcelamento"`
	IsContaMacro        bool    `gorm:"not null;default:false;index" json:"isContaMacro"`
	ParentID            *uint   `gorm:"index" json:"parentId"`
	ValorTotal          float64 `gorm:"not null;default:0" json:"valorTotal"`

	// Classificação
	CodigoTipo         string `gorm:"size:30;index" json:"codigoTipo"`
	Beneficiario       string `gorm:"size:255" json:"beneficiario"`
	Categoria          string `gorm:"size:100" json:"categoria"`
	Subcategoria       string `gorm:"size:100" json:"subcategoria"`
	Tipo               string `gorm:"size:20;not null;default:'saida'" json:"tipo"`
	CartaoID           *uint  `gorm:"index" json:"cartaoId"`
	ContaBancariaID    *uint  `gorm:"index" json:"contaBancariaId"`
	SocioResponsavelID *uint  `gorm:"index" json:"socioResponsavelId"`

	EmpresaID uint `gorm:"not null;index" json:"empresaId"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Conta{})
}
