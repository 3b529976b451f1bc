// internal/parcelamento/engine.go
package parcelamento

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gestaolivre/api-financeiro/internal/centrocusto"
	"github.com/gestaolivre/api-financeiro/internal/conta"
	"github.com/gestaolivre/api-financeiro/internal/fluxocaixa"
	"github.com/gestaolivre/api-financeiro/internal/moeda"
	"github.com/gestaolivre/api-financeiro/internal/utils"
)

// Service é o motor de reconciliação de parcelamentos: cria o conjunto
// macro+parcelas, aplica edições mantendo os invariantes do agregado (soma das
// parcelas == valor da macro, numeração contígua, contagens consistentes) e
// dispara os recálculos derivados (fatura de cartão, pró-labore, fluxo de
// caixa, centro de custo).
type Service struct {
	Contas    ContaStore
	Centros   CentroCustoStore
	Fluxo     FluxoStore
	Historico HistoricoStore
	Faturas   FaturaRecalculadora
	ProLabore ProLaboreRecalculadora
	Logger    *logrus.Logger

	locks grupoLock
}

// NewService instancia o motor com suas dependências de persistência.
func NewService(contas ContaStore, centros CentroCustoStore, fluxo FluxoStore,
	hist HistoricoStore, faturas FaturaRecalculadora, prolabore ProLaboreRecalculadora,
	logger *logrus.Logger) *Service {
	return &Service{
		Contas:    contas,
		Centros:   centros,
		Fluxo:     fluxo,
		Historico: hist,
		Faturas:   faturas,
		ProLabore: prolabore,
		Logger:    logger,
	}
}

/* ============================ Resolução de grupo ============================ */

// resolverGrupo aceita o id do grupo diretamente ou o id numérico da conta
// macro e devolve o grupo normalizado: macro sempre presente e parcelas
// ordenadas por vencimento crescente.
func (s *Service) resolverGrupo(idOuGrupo string, empresaID uint) (string, *conta.Conta, []conta.Conta, error) {
	grupoID := idOuGrupo
	if n, err := strconv.Atoi(idOuGrupo); err == nil {
		c, err := s.Contas.FindByID(uint(n))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", nil, nil, ErrGrupoNaoEncontrado
			}
			return "", nil, nil, err
		}
		if c.GrupoParcelamentoID == "" {
			return "", nil, nil, ErrGrupoNaoEncontrado
		}
		grupoID = c.GrupoParcelamentoID
	}

	macro, err := s.Contas.FindMacroByGrupo(grupoID, empresaID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, nil, err
	}
	parcelas, err := s.Contas.ListParcelasByGrupo(grupoID, empresaID)
	if err != nil {
		return "", nil, nil, err
	}
	if macro == nil && len(parcelas) == 0 {
		return "", nil, nil, ErrGrupoNaoEncontrado
	}

	// Grupos legados compartilham só o grupo_parcelamento_id, sem macro. A
	// normalização cria a macro sintética uma única vez, aqui, em vez de
	// espalhar caminhos duplos pelo motor.
	if macro == nil {
		macro, err = s.normalizarGrupoLegado(grupoID, empresaID, parcelas)
		if err != nil {
			return "", nil, nil, err
		}
		parcelas, err = s.Contas.ListParcelasByGrupo(grupoID, empresaID)
		if err != nil {
			return "", nil, nil, err
		}
	}
	return grupoID, macro, parcelas, nil
}

// normalizarGrupoLegado cria a conta macro sintética de um grupo plano e
// vincula as parcelas existentes a ela via ParentID.
func (s *Service) normalizarGrupoLegado(grupoID string, empresaID uint, parcelas []conta.Conta) (*conta.Conta, error) {
	snap := ConstruirSnapshot(parcelas, nil)
	primeira := parcelas[0]
	macro := &conta.Conta{
		Descricao:           snap.Descricao,
		Valor:               snap.ValorTotal,
		ValorTotal:          snap.ValorTotal,
		DataVencimento:      primeira.DataVencimento,
		Status:              conta.StatusPendente,
		TotalParcelas:       len(parcelas),
		GrupoParcelamentoID: grupoID,
		TipoParcelamento:    primeira.TipoParcelamento,
		IsContaMacro:        true,
		CodigoTipo:          snap.CodigoTipo,
		Beneficiario:        snap.Beneficiario,
		Categoria:           primeira.Categoria,
		Subcategoria:        primeira.Subcategoria,
		Tipo:                primeira.Tipo,
		EmpresaID:           empresaID,
	}
	if err := s.Contas.Create(macro); err != nil {
		return nil, err
	}
	for _, p := range parcelas {
		if err := s.Contas.UpdateFields(p.ID, map[string]interface{}{"parent_id": macro.ID}); err != nil {
			return nil, err
		}
	}
	return macro, nil
}

// GrupoID resolve um identificador (grupo ou id numérico da macro) para o id
// do grupo, sem mutação além da normalização de grupos legados.
func (s *Service) GrupoID(idOuGrupo string, empresaID uint) (string, error) {
	grupoID, _, _, err := s.resolverGrupo(idOuGrupo, empresaID)
	return grupoID, err
}

/* =============================== Criação =============================== */

// CriarParcelamento cria o plano inteiro: macro + N parcelas mensais, com o
// reflexo no agregado previsto do centro de custo e, quando for o caso, na
// fatura do cartão e no pró-labore do sócio responsável.
func (s *Service) CriarParcelamento(req CriacaoRequest) (*PlanoCriado, error) {
	if req.TotalParcelas < 2 {
		return nil, fmt.Errorf("parcelamento exige ao menos 2 parcelas, recebido %d", req.TotalParcelas)
	}
	if req.ParcelaInicial <= 0 {
		req.ParcelaInicial = 1
	}
	if req.ParcelaInicial > req.TotalParcelas {
		return nil, fmt.Errorf("parcela inicial %d maior que o total %d", req.ParcelaInicial, req.TotalParcelas)
	}
	if req.Tipo == "" {
		req.Tipo = fluxocaixa.TipoSaida
	}

	grupoID := uuid.NewString()
	numParcelas := req.TotalParcelas - req.ParcelaInicial + 1

	valoresParcelas := make([]float64, numParcelas)
	for i := range valoresParcelas {
		valoresParcelas[i] = req.ValorParcela
	}
	valorTotal := moeda.Somar(valoresParcelas)

	socioID, campoPrevisto, campoReal := s.resolverSocio(req.CodigoTipo, req.EmpresaID)

	if req.CodigoTipo != "" {
		s.efeito("centro-custo-previsto", grupoID, func() error {
			_, err := s.Centros.AcrescentarComPropagacao(req.CodigoTipo, req.EmpresaID, campoPrevisto, valorTotal)
			return err
		})
	}

	macro := &conta.Conta{
		Descricao:           req.Descricao,
		Valor:               valorTotal,
		ValorTotal:          valorTotal,
		DataVencimento:      req.PrimeiroVencimento,
		Pago:                false,
		Status:              conta.StatusPendente,
		TotalParcelas:       numParcelas,
		GrupoParcelamentoID: grupoID,
		TipoParcelamento:    req.TipoParcelamento,
		IsContaMacro:        true,
		CodigoTipo:          req.CodigoTipo,
		Beneficiario:        req.Beneficiario,
		Categoria:           req.Categoria,
		Subcategoria:        req.Subcategoria,
		Tipo:                req.Tipo,
		CartaoID:            req.CartaoID,
		ContaBancariaID:     req.ContaBancariaID,
		SocioResponsavelID:  socioID,
		EmpresaID:           req.EmpresaID,
	}
	if err := s.Contas.Create(macro); err != nil {
		return nil, err
	}

	parcelas := make([]conta.Conta, 0, numParcelas)
	algumaPaga := false
	for i := req.ParcelaInicial; i <= req.TotalParcelas; i++ {
		venc := req.PrimeiroVencimento.AddDate(0, i-req.ParcelaInicial, 0)
		p := conta.Conta{
			Descricao:           req.Descricao,
			Valor:               req.ValorParcela,
			DataVencimento:      venc,
			Status:              conta.StatusPendente,
			NumeroParcela:       fmt.Sprintf("%d/%d", i, req.TotalParcelas),
			TotalParcelas:       req.TotalParcelas,
			GrupoParcelamentoID: grupoID,
			TipoParcelamento:    req.TipoParcelamento,
			ParentID:            &macro.ID,
			CodigoTipo:          req.CodigoTipo,
			Beneficiario:        req.Beneficiario,
			Categoria:           req.Categoria,
			Subcategoria:        req.Subcategoria,
			Tipo:                req.Tipo,
			CartaoID:            req.CartaoID,
			ContaBancariaID:     req.ContaBancariaID,
			SocioResponsavelID:  socioID,
			EmpresaID:           req.EmpresaID,
		}
		if i == req.ParcelaInicial && req.PrimeiraPaga {
			pagamento := venc
			if req.DataPagamentoPrimeira != nil {
				pagamento = *req.DataPagamentoPrimeira
			}
			p.Pago = true
			p.Status = conta.StatusPago
			p.DataPagamento = &pagamento
			algumaPaga = true
		}
		if err := s.Contas.Create(&p); err != nil {
			return nil, err
		}
		if p.Pago {
			s.efeito("fluxo-caixa-parcela-paga", grupoID, func() error {
				return s.Fluxo.Create(lancamentoPara(&p))
			})
			if req.CodigoTipo != "" {
				s.efeito("centro-custo-realizado", grupoID, func() error {
					_, err := s.Centros.AcrescentarComPropagacao(req.CodigoTipo, req.EmpresaID, campoReal, p.Valor)
					return err
				})
			}
		}
		parcelas = append(parcelas, p)
	}

	if algumaPaga {
		s.efeito("recalculo-saldos", grupoID, func() error {
			return s.Fluxo.RecalcularSaldos(req.EmpresaID)
		})
	}
	if req.CartaoID != nil {
		for _, ref := range mesesDistintos(parcelas) {
			ref := ref
			s.efeito("recalculo-fatura", grupoID, func() error {
				_, err := s.Faturas.RecalcularFatura(*req.CartaoID, ref)
				return err
			})
		}
	}
	if socioID != nil {
		s.efeito("recalculo-prolabore", grupoID, func() error {
			return s.ProLabore.Recalcular(*socioID, req.PrimeiroVencimento)
		})
	}

	return &PlanoCriado{Macro: macro, Parcelas: parcelas}, nil
}

/* =============================== Exclusão =============================== */

// ExcluirGrupo remove o grupo inteiro: desvincula o fluxo de caixa das
// parcelas pagas, estorna os agregados de centro de custo, apaga as parcelas e
// por fim a macro. Se alguma parcela removida estava paga, a série de saldos
// acumulados é refeita do zero: saldos posteriores dependem da ordem.
func (s *Service) ExcluirGrupo(idOuGrupo string, empresaID uint) (*EdicaoResultado, error) {
	grupoID, macro, parcelas, err := s.resolverGrupo(idOuGrupo, empresaID)
	if err != nil {
		return nil, err
	}
	s.locks.Lock(grupoID)
	defer s.locks.Unlock(grupoID)

	socioID, campoPrevisto, campoReal := s.resolverSocio(macro.CodigoTipo, empresaID)

	var valores, pagos []float64
	algumaPaga := false
	for _, p := range parcelas {
		valores = append(valores, p.Valor)
		if p.Pago {
			pagos = append(pagos, p.Valor)
			algumaPaga = true
			if err := s.Fluxo.DeleteByConta(p.ID); err != nil {
				return nil, err
			}
		}
		if err := s.Contas.DeleteByID(p.ID); err != nil {
			return nil, err
		}
	}
	if err := s.Contas.DeleteByID(macro.ID); err != nil {
		return nil, err
	}

	if macro.CodigoTipo != "" {
		total := moeda.Somar(valores)
		s.efeito("estorno-centro-custo-previsto", grupoID, func() error {
			_, err := s.Centros.AcrescentarComPropagacao(macro.CodigoTipo, empresaID, campoPrevisto, -total)
			return err
		})
		if totalPago := moeda.Somar(pagos); totalPago > 0 {
			s.efeito("estorno-centro-custo-realizado", grupoID, func() error {
				_, err := s.Centros.AcrescentarComPropagacao(macro.CodigoTipo, empresaID, campoReal, -totalPago)
				return err
			})
		}
	}
	if algumaPaga {
		s.efeito("recalculo-saldos", grupoID, func() error {
			return s.Fluxo.RecalcularSaldos(empresaID)
		})
	}
	if socioID != nil {
		s.efeito("recalculo-prolabore", grupoID, func() error {
			return s.ProLabore.Recalcular(*socioID, time.Now())
		})
	}

	return &EdicaoResultado{Removidas: len(parcelas)}, nil
}

/* =============================== Auxiliares =============================== */

// resolverSocio resolve o sócio responsável a partir do código do centro de
// custo e escolhe os campos agregados corretos (centros de sócio acumulam em
// desconto_previsto/desconto_real em vez de previsto/realizado).
func (s *Service) resolverSocio(codigoTipo string, empresaID uint) (*uint, string, string) {
	campoPrevisto := centrocusto.CampoPrevisto
	campoReal := centrocusto.CampoRealizado
	if codigoTipo == "" {
		return nil, campoPrevisto, campoReal
	}
	cc, err := s.Centros.FindBySigla(codigoTipo, empresaID)
	if err != nil || cc == nil {
		return nil, campoPrevisto, campoReal
	}
	if !cc.IsSocio {
		return nil, campoPrevisto, campoReal
	}
	id := cc.ID
	return &id, centrocusto.CampoDescontoPrevisto, centrocusto.CampoDescontoReal
}

// efeito executa um passo não-crítico sem deixar a falha escapar.
func (s *Service) efeito(nome, grupoID string, fn func() error) {
	utils.BestEffort(s.Logger, nome, logrus.Fields{"grupoParcelamentoId": grupoID}, fn)
}

// lancamentoPara monta a linha de fluxo de caixa de uma parcela paga.
// A macro nunca gera lançamento: só parcelas entram no fluxo.
func lancamentoPara(p *conta.Conta) *fluxocaixa.Lancamento {
	data := p.DataVencimento
	if p.DataPagamento != nil {
		data = *p.DataPagamento
	}
	valor := p.Valor
	if p.ValorPago != nil {
		valor = *p.ValorPago
	}
	id := p.ID
	return &fluxocaixa.Lancamento{
		Data:        data,
		Codigo:      fmt.Sprintf("PARC %s", p.NumeroParcela),
		Contraparte: p.Beneficiario,
		Valor:       valor,
		Tipo:        p.Tipo,
		ContaID:     &id,
		CodigoTipo:  p.CodigoTipo,
		EmpresaID:   p.EmpresaID,
	}
}

// mesesDistintos devolve uma referência por mês/ano distinto de vencimento.
func mesesDistintos(parcelas []conta.Conta) []time.Time {
	vistos := make(map[string]bool)
	var refs []time.Time
	for _, p := range parcelas {
		chave := p.DataVencimento.Format("2006-01")
		if !vistos[chave] {
			vistos[chave] = true
			refs = append(refs, p.DataVencimento)
		}
	}
	return refs
}
