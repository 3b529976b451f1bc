// internal/prolabore/service.go
package prolabore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gestaolivre/api-financeiro/internal/centrocusto"
	"github.com/gestaolivre/api-financeiro/internal/conta"
	"github.com/gestaolivre/api-financeiro/internal/fluxocaixa"
)

// CategoriaProLabore identifica a conta fixa de pró-labore de um sócio.
const CategoriaProLabore = "Pró-labore"

// Liquido computa o pró-labore líquido a partir do estado atual: base prevista
// menos descontos recorrentes, contas vinculadas pendentes, pagas ainda não
// processadas e lançamentos diretos do mês. Função pura, sem deltas: o mesmo
// estado produz sempre o mesmo líquido.
func Liquido(previstoBase, descontosRecorrentes, pendentes, pagasNaoProcessadas, diretos float64) float64 {
	liquido := decimal.NewFromFloat(previstoBase).
		Sub(decimal.NewFromFloat(descontosRecorrentes)).
		Sub(decimal.NewFromFloat(pendentes)).
		Sub(decimal.NewFromFloat(pagasNaoProcessadas)).
		Sub(decimal.NewFromFloat(diretos))
	valor, _ := liquido.Round(2).Float64()
	return valor
}

// Service recalcula o pró-labore líquido de um sócio e grava o resultado na
// conta fixa de pró-labore dele. O cálculo sempre deriva dos dados atuais,
// nunca aplica deltas: recalcular duas vezes seguidas dá o mesmo total.
type Service struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

// NewService instancia o serviço.
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{DB: db, Logger: logger}
}

// Recalcular refaz o pró-labore líquido do sócio dono do centro de custo:
//
//	líquido = previsto base − (descontos recorrentes
//	                           + contas vinculadas pendentes
//	                           + contas vinculadas pagas e não processadas
//	                           + lançamentos diretos do mês corrente)
//
// e grava o valor na conta de pró-labore em aberto do sócio (categoria
// "Pró-labore", não paga, mesmo código de centro de custo).
func (s *Service) Recalcular(centroCustoID uint, referencia time.Time) error {
	var cc centrocusto.CentroCusto
	if err := s.DB.First(&cc, centroCustoID).Error; err != nil {
		return err
	}
	if !cc.IsSocio {
		return nil
	}

	// Contas vinculadas ao sócio ainda pendentes.
	var pendentes float64
	if err := s.DB.Model(&conta.Conta{}).
		Where("socio_responsavel_id = ? AND is_conta_macro = ? AND status = ?",
			cc.ID, false, conta.StatusPendente).
		Select("COALESCE(SUM(valor), 0)").
		Scan(&pendentes).Error; err != nil {
		return err
	}

	// Contas pagas cujo desconto ainda não entrou no acumulado real do centro.
	var pagasNaoProcessadas float64
	if err := s.DB.Model(&conta.Conta{}).
		Where("socio_responsavel_id = ? AND is_conta_macro = ? AND status = ? AND pago = ?",
			cc.ID, false, conta.StatusPago, true).
		Where("EXTRACT(YEAR FROM data_pagamento) = ? AND EXTRACT(MONTH FROM data_pagamento) = ?",
			referencia.Year(), int(referencia.Month())).
		Select("COALESCE(SUM(valor), 0)").
		Scan(&pagasNaoProcessadas).Error; err != nil {
		return err
	}

	// Lançamentos diretos no fluxo de caixa deste mês com o código do centro.
	var diretos float64
	if err := s.DB.Model(&fluxocaixa.Lancamento{}).
		Where("codigo_tipo = ? AND conta_id IS NULL AND empresa_id = ?", cc.Sigla, cc.EmpresaID).
		Where("EXTRACT(YEAR FROM data) = ? AND EXTRACT(MONTH FROM data) = ?",
			referencia.Year(), int(referencia.Month())).
		Select("COALESCE(SUM(valor), 0)").
		Scan(&diretos).Error; err != nil {
		return err
	}

	valor := Liquido(cc.Previsto, cc.DescontoPrevisto, pendentes, pagasNaoProcessadas, diretos)

	// Conta fixa de pró-labore em aberto do sócio.
	var fixa conta.Conta
	err := s.DB.
		Where("categoria = ? AND pago = ? AND codigo_tipo = ? AND empresa_id = ?",
			CategoriaProLabore, false, cc.Sigla, cc.EmpresaID).
		First(&fixa).Error
	if err == gorm.ErrRecordNotFound {
		s.Logger.WithFields(logrus.Fields{
			"centroCusto": cc.Sigla,
			"empresaId":   cc.EmpresaID,
		}).Warn("sócio sem conta fixa de pró-labore em aberto, recálculo ignorado")
		return nil
	}
	if err != nil {
		return err
	}

	return s.DB.Model(&conta.Conta{}).
		Where("id = ?", fixa.ID).
		Update("valor", valor).Error
}
