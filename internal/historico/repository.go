// internal/historico/repository.go
package historico

import (
	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados do histórico de parcelamentos.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancia um novo repositório.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create insere uma entrada de histórico.
func (r *Repository) Create(h *HistoricoParcelamento) error {
	return r.DB.Create(h).Error
}

// ListByGrupo retorna o histórico de um grupo, mais recente primeiro.
func (r *Repository) ListByGrupo(grupoID string, empresaID uint) ([]HistoricoParcelamento, error) {
	var hs []HistoricoParcelamento
	err := r.DB.
		Where("grupo_parcelamento_id = ? AND empresa_id = ?", grupoID, empresaID).
		Order("created_at DESC").
		Find(&hs).Error
	return hs, err
}
