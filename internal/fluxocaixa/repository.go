// internal/fluxocaixa/repository.go
package fluxocaixa

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados do fluxo de caixa.
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

// Create insere um lançamento.
func (r *Repository) Create(l *Lancamento) error {
	return r.DB.Create(l).Error
}

// DeleteByConta remove os lançamentos vinculados a uma conta.
func (r *Repository) DeleteByConta(contaID uint) error {
	return r.DB.Where("conta_id = ?", contaID).Delete(&Lancamento{}).Error
}

// ListByEmpresa retorna todos os lançamentos da empresa em ordem cronológica.
func (r *Repository) ListByEmpresa(empresaID uint) ([]Lancamento, error) {
	var ls []Lancamento
	err := r.DB.
		Where("empresa_id = ?", empresaID).
		Order("data ASC, id ASC").
		Find(&ls).Error
	return ls, err
}

// SumByContaIDs soma os valores dos lançamentos vinculados às contas informadas.
func (r *Repository) SumByContaIDs(contaIDs []uint) (float64, error) {
	if len(contaIDs) == 0 {
		return 0, nil
	}
	var total float64
	err := r.DB.Model(&Lancamento{}).
		Where("conta_id IN ?", contaIDs).
		Select("COALESCE(SUM(valor), 0)").
		Scan(&total).Error
	return total, err
}

// ComputarSaldos recalcula o saldo acumulado de cada lançamento, assumindo a
// lista já ordenada cronologicamente. Função pura: devolve os saldos na mesma
// ordem da entrada.
func ComputarSaldos(ls []Lancamento) []float64 {
	saldos := make([]float64, len(ls))
	acumulado := decimal.Zero
	for i, l := range ls {
		v := decimal.NewFromFloat(l.Valor)
		if l.Tipo == TipoSaida {
			v = v.Neg()
		}
		acumulado = acumulado.Add(v)
		saldos[i], _ = acumulado.Round(2).Float64()
	}
	return saldos
}

// RecalcularSaldos refaz a série inteira de saldos acumulados da empresa.
// Necessário após qualquer remoção no meio da sequência: os saldos posteriores
// dependem da ordem, um decremento pontual não basta.
func (r *Repository) RecalcularSaldos(empresaID uint) error {
	ls, err := r.ListByEmpresa(empresaID)
	if err != nil {
		return err
	}
	saldos := ComputarSaldos(ls)
	for i, l := range ls {
		if l.SaldoAcumulado == saldos[i] {
			continue
		}
		if err := r.DB.Model(&Lancamento{}).
			Where("id = ?", l.ID).
			Update("saldo_acumulado", saldos[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
