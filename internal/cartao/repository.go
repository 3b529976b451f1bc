// internal/cartao/repository.go
package cartao

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gestaolivre/api-financeiro/internal/conta"
)

// Repository encapsula o acesso a dados de cartões e faturas.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancia um novo repositório.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// FindByID busca um cartão pelo ID.
func (r *Repository) FindByID(id uint) (*Cartao, error) {
	var c Cartao
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// TotalDaCompetencia deriva o total de uma competência do estado atual das
// contas: ignora macro e canceladas e soma as demais cuja competência casa.
// Função pura, sem deltas incrementais: computar duas vezes sobre o mesmo
// estado dá o mesmo total.
func TotalDaCompetencia(diaFechamento, mes, ano int, contas []conta.Conta) float64 {
	total := decimal.Zero
	for _, ct := range contas {
		if ct.IsContaMacro || ct.Status == conta.StatusCancelado {
			continue
		}
		m, a := CompetenciaFatura(diaFechamento, ct.DataVencimento)
		if m == mes && a == ano {
			total = total.Add(decimal.NewFromFloat(ct.Valor))
		}
	}
	valor, _ := total.Round(2).Float64()
	return valor
}

// RecalcularFatura refaz o total da fatura do cartão para a competência que
// cobre a data de referência, sempre a partir do estado atual das contas
// vinculadas: rodar duas vezes seguidas produz o mesmo resultado.
func (r *Repository) RecalcularFatura(cartaoID uint, referencia time.Time) (*Fatura, error) {
	c, err := r.FindByID(cartaoID)
	if err != nil {
		return nil, err
	}
	mes, ano := CompetenciaFatura(c.DiaFechamento, referencia)

	var contas []conta.Conta
	if err := r.DB.
		Where("cartao_id = ?", cartaoID).
		Find(&contas).Error; err != nil {
		return nil, err
	}
	valor := TotalDaCompetencia(c.DiaFechamento, mes, ano, contas)

	var f Fatura
	err = r.DB.Where("cartao_id = ? AND mes = ? AND ano = ?", cartaoID, mes, ano).First(&f).Error
	switch {
	case err == nil:
		f.ValorTotal = valor
		if err := r.DB.Save(&f).Error; err != nil {
			return nil, err
		}
	case err == gorm.ErrRecordNotFound:
		f = Fatura{CartaoID: cartaoID, Mes: mes, Ano: ano, ValorTotal: valor, EmpresaID: c.EmpresaID}
		if err := r.DB.Create(&f).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return &f, nil
}
