// internal/centrocusto/repository.go
package centrocusto

import (
	"fmt"

	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de Centros de Custo.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancia um novo repositório.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithDB retorna uma cópia do repo usando um *gorm.DB específico (ex.: tx).
func (r *Repository) WithDB(db *gorm.DB) *Repository {
	if db == nil {
		db = r.DB
	}
	return &Repository{DB: db}
}

// FindBySigla busca um centro de custo pela sigla dentro da empresa.
func (r *Repository) FindBySigla(sigla string, empresaID uint) (*CentroCusto, error) {
	var cc CentroCusto
	err := r.DB.Where("sigla = ? AND empresa_id = ?", sigla, empresaID).First(&cc).Error
	if err != nil {
		return nil, err
	}
	return &cc, nil
}

// FindByID busca um centro de custo pelo ID.
func (r *Repository) FindByID(id uint) (*CentroCusto, error) {
	var cc CentroCusto
	if err := r.DB.First(&cc, id).Error; err != nil {
		return nil, err
	}
	return &cc, nil
}

// Incrementar soma delta ao campo agregado de forma atômica no banco
// ("campo = campo + delta"), evitando lost updates entre requisições concorrentes.
func (r *Repository) Incrementar(id uint, campo string, delta float64) error {
	switch campo {
	case CampoPrevisto, CampoRealizado, CampoDescontoPrevisto, CampoDescontoReal:
	default:
		return fmt.Errorf("campo agregado inválido: %q", campo)
	}
	return r.DB.Model(&CentroCusto{}).
		Where("id = ?", id).
		Update(campo, gorm.Expr(campo+" + ?", delta)).Error
}

// CadeiaAlvo devolve os ids a incrementar: o próprio centro e toda a cadeia de
// ancestrais, cada um no máximo uma vez. A caminhada é iterativa com guarda de
// ciclo: um ParentID já visitado encerra a subida.
func CadeiaAlvo(cc *CentroCusto, buscar func(uint) (*CentroCusto, error)) ([]uint, error) {
	ids := []uint{cc.ID}
	visitados := map[uint]bool{cc.ID: true}
	parentID := cc.ParentID
	for parentID != nil {
		if visitados[*parentID] {
			break
		}
		pai, err := buscar(*parentID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, pai.ID)
		visitados[pai.ID] = true
		parentID = pai.ParentID
	}
	return ids, nil
}

// AcrescentarComPropagacao incrementa o campo do centro identificado pela sigla
// e propaga o mesmo delta por toda a cadeia de ancestrais, cada centro uma
// única vez mesmo com ParentID cíclico.
func (r *Repository) AcrescentarComPropagacao(sigla string, empresaID uint, campo string, delta float64) (*CentroCusto, error) {
	cc, err := r.FindBySigla(sigla, empresaID)
	if err != nil {
		return nil, err
	}
	ids, err := CadeiaAlvo(cc, r.FindByID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := r.Incrementar(id, campo, delta); err != nil {
			return nil, err
		}
	}
	return cc, nil
}
