// internal/conta/repository.go
package conta

import (
	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de Contas.
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

/* ========================= CRUD básico ========================= */

// Create insere uma nova conta.
func (r *Repository) Create(c *Conta) error {
	return r.DB.Create(c).Error
}

// CreateInBatch cria múltiplas contas de uma vez (ignora se vazio).
func (r *Repository) CreateInBatch(contas []*Conta) error {
	if len(contas) == 0 {
		return nil
	}
	return r.DB.Create(contas).Error
}

// FindByID busca uma única conta pelo seu ID.
func (r *Repository) FindByID(id uint) (*Conta, error) {
	var c Conta
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Update salva todos os campos de uma conta existente (Save exige PK).
func (r *Repository) Update(c *Conta) error {
	return r.DB.Save(c).Error
}

// UpdateFields atualiza campos específicos de uma conta.
func (r *Repository) UpdateFields(id uint, campos map[string]interface{}) error {
	return r.DB.Model(&Conta{}).Where("id = ?", id).Updates(campos).Error
}

// DeleteByID apaga a conta; retorna gorm.ErrRecordNotFound se nada foi deletado.
func (r *Repository) DeleteByID(id uint) error {
	res := r.DB.Delete(&Conta{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

/* ========================= Consultas de parcelamento ========================= */

// FindMacroByGrupo busca a conta macro de um grupo de parcelamento.
func (r *Repository) FindMacroByGrupo(grupoID string, empresaID uint) (*Conta, error) {
	var c Conta
	err := r.DB.
		Where("grupo_parcelamento_id = ? AND is_conta_macro = ? AND empresa_id = ?", grupoID, true, empresaID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListParcelasByGrupo busca todas as parcelas (não-macro) de um grupo,
// ordenadas por vencimento crescente.
func (r *Repository) ListParcelasByGrupo(grupoID string, empresaID uint) ([]Conta, error) {
	var parcelas []Conta
	err := r.DB.
		Where("grupo_parcelamento_id = ? AND is_conta_macro = ? AND empresa_id = ?", grupoID, false, empresaID).
		Order("data_vencimento ASC").
		Find(&parcelas).Error
	return parcelas, err
}

// ListFilhasByParent busca as parcelas vinculadas a uma conta macro pelo ParentID.
func (r *Repository) ListFilhasByParent(parentID uint) ([]Conta, error) {
	var parcelas []Conta
	err := r.DB.
		Where("parent_id = ?", parentID).
		Order("data_vencimento ASC").
		Find(&parcelas).Error
	return parcelas, err
}

// SumValorByGrupo soma os valores das parcelas (não-macro) de um grupo.
func (r *Repository) SumValorByGrupo(grupoID string, empresaID uint) (float64, error) {
	var total float64
	err := r.DB.Model(&Conta{}).
		Where("grupo_parcelamento_id = ? AND is_conta_macro = ? AND empresa_id = ?", grupoID, false, empresaID).
		Select("COALESCE(SUM(valor), 0)").
		Scan(&total).Error
	return total, err
}

/* ========================= Listagem com filtros ========================= */

// Filtro de listagem de contas.
type Filtro struct {
	EmpresaID   uint
	Status      string
	CodigoTipo  string
	CartaoID    *uint
	Ano         int
	Mes         int
	SomenteRaiz bool // exclui parcelas, mantém macros e contas avulsas
}

// List aplica o filtro e retorna as contas ordenadas por vencimento.
func (r *Repository) List(f Filtro) ([]Conta, error) {
	q := r.DB.Where("empresa_id = ?", f.EmpresaID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CodigoTipo != "" {
		q = q.Where("codigo_tipo = ?", f.CodigoTipo)
	}
	if f.CartaoID != nil {
		q = q.Where("cartao_id = ?", *f.CartaoID)
	}
	if f.Ano > 0 && f.Mes > 0 {
		q = q.Where("EXTRACT(YEAR FROM data_vencimento) = ? AND EXTRACT(MONTH FROM data_vencimento) = ?", f.Ano, f.Mes)
	}
	if f.SomenteRaiz {
		q = q.Where("parent_id IS NULL")
	}
	var contas []Conta
	err := q.Order("data_vencimento ASC").Find(&contas).Error
	return contas, err
}
