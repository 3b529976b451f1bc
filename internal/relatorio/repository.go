// internal/relatorio/repository.go
package relatorio

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gestaolivre/api-financeiro/internal/centrocusto"
	"github.com/gestaolivre/api-financeiro/internal/conta"
)

// LinhaDRE é um grupo de receitas ou despesas por categoria no período.
type LinhaDRE struct {
	Categoria string  `json:"categoria"`
	Tipo      string  `json:"tipo"`
	Total     float64 `json:"total"`
}

// DRE é o demonstrativo de resultado do período.
type DRE struct {
	Ano       int        `json:"ano"`
	Mes       int        `json:"mes"`
	Linhas    []LinhaDRE `json:"linhas"`
	Receitas  float64    `json:"receitas"`
	Despesas  float64    `json:"despesas"`
	Resultado float64    `json:"resultado"`
}

// LinhaBalancete resume um centro de custo: previsto, realizado e desvio.
type LinhaBalancete struct {
	Sigla     string  `json:"sigla"`
	Nome      string  `json:"nome"`
	Previsto  float64 `json:"previsto"`
	Realizado float64 `json:"realizado"`
	Desvio    float64 `json:"desvio"`
}

// Repository monta os relatórios agregando contas e centros de custo.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancia um novo repositório.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// DRE agrega as contas não-macro do período por categoria e direção. Contas
// macro nunca entram: representariam o plano em dobro com as parcelas.
func (r *Repository) DRE(empresaID uint, ano, mes int) (*DRE, error) {
	var linhas []LinhaDRE
	err := r.DB.Model(&conta.Conta{}).
		Select("categoria, tipo, COALESCE(SUM(valor), 0) AS total").
		Where("empresa_id = ? AND is_conta_macro = ? AND status <> ?", empresaID, false, conta.StatusCancelado).
		Where("EXTRACT(YEAR FROM data_vencimento) = ? AND EXTRACT(MONTH FROM data_vencimento) = ?", ano, mes).
		Group("categoria, tipo").
		Order("categoria ASC").
		Scan(&linhas).Error
	if err != nil {
		return nil, err
	}

	receitas, despesas := decimal.Zero, decimal.Zero
	for _, l := range linhas {
		if l.Tipo == "entrada" {
			receitas = receitas.Add(decimal.NewFromFloat(l.Total))
		} else {
			despesas = despesas.Add(decimal.NewFromFloat(l.Total))
		}
	}
	rec, _ := receitas.Round(2).Float64()
	des, _ := despesas.Round(2).Float64()
	res, _ := receitas.Sub(despesas).Round(2).Float64()

	return &DRE{Ano: ano, Mes: mes, Linhas: linhas, Receitas: rec, Despesas: des, Resultado: res}, nil
}

// Balancete lista os centros de custo da empresa com previsto, realizado e desvio.
func (r *Repository) Balancete(empresaID uint) ([]LinhaBalancete, error) {
	var centros []centrocusto.CentroCusto
	if err := r.DB.
		Where("empresa_id = ?", empresaID).
		Order("sigla ASC").
		Find(&centros).Error; err != nil {
		return nil, err
	}

	linhas := make([]LinhaBalancete, 0, len(centros))
	for _, cc := range centros {
		desvio, _ := decimal.NewFromFloat(cc.Previsto).
			Sub(decimal.NewFromFloat(cc.Realizado)).Round(2).Float64()
		linhas = append(linhas, LinhaBalancete{
			Sigla:     cc.Sigla,
			Nome:      cc.Nome,
			Previsto:  cc.Previsto,
			Realizado: cc.Realizado,
			Desvio:    desvio,
		})
	}
	return linhas, nil
}
