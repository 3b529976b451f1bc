// internal/parcelamento/edicao.go
package parcelamento

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gestaolivre/api-financeiro/internal/conta"
	"github.com/gestaolivre/api-financeiro/internal/historico"
	"github.com/gestaolivre/api-financeiro/internal/moeda"
)

var reNumeroParcela = regexp.MustCompile(`^(\d+)/\d+$`)

// marcadorFaturas acumula, por cartão, um mês de referência por competência
// tocada durante a edição, para recálculo ao final.
type marcadorFaturas map[uint]map[string]time.Time

func (m marcadorFaturas) marca(cartaoID uint, ref time.Time) {
	if m[cartaoID] == nil {
		m[cartaoID] = make(map[string]time.Time)
	}
	m[cartaoID][ref.Format("2006-01")] = ref
}

// AplicarEdicao aplica uma edição completa a um grupo de parcelamento, nas
// etapas fixas: snapshot e detecção antes de qualquer mutação, redistribuição
// de valor total, mudança de quantidade, broadcast de campos compartilhados,
// lista de substituição por parcela, renumeração, sincronização final da macro
// e dos agregados, recálculos derivados e registro de histórico (best-effort).
func (s *Service) AplicarEdicao(idOuGrupo string, req EdicaoRequest) (*EdicaoResultado, error) {
	if req.NovaQuantidade == nil {
		req.NovaQuantidade = req.TotalParcelas
	}

	grupoID, macro, _, err := s.resolverGrupo(idOuGrupo, req.EmpresaID)
	if err != nil {
		return nil, err
	}
	s.locks.Lock(grupoID)
	defer s.locks.Unlock(grupoID)

	parcelas, err := s.Contas.ListParcelasByGrupo(grupoID, req.EmpresaID)
	if err != nil {
		return nil, err
	}

	snapAnterior := ConstruirSnapshot(parcelas, macro)
	alteracao := DetectarTipoAlteracao(snapAnterior, req)
	preTotal := snapAnterior.ValorTotal

	// Guarda de redução, validada antes de qualquer escrita: só parcelas
	// pendentes podem ser removidas. Falhando, nada é alterado.
	if req.NovaQuantidade != nil && len(req.ParcelasAtualizadas) == 0 && *req.NovaQuantidade < len(parcelas) {
		pagas := 0
		for _, p := range parcelas {
			if p.Pago {
				pagas++
			}
		}
		remover := len(parcelas) - *req.NovaQuantidade
		if pendentes := len(parcelas) - pagas; remover > pendentes {
			return nil, &ErrReducaoInvalida{Pagas: pagas, Pendentes: pendentes, Remover: remover}
		}
	}

	res := &EdicaoResultado{}
	faturas := marcadorFaturas{}
	fluxoMexido := false

	// Etapa 1: redistribuição do valor total pelas parcelas atuais.
	if req.ValorTotal != nil && len(parcelas) > 0 && moeda.Diferente(*req.ValorTotal, preTotal) {
		valores := moeda.DividirIgualmente(*req.ValorTotal, len(parcelas))
		for i, p := range parcelas {
			if moeda.Igual(p.Valor, valores[i]) {
				continue
			}
			if err := s.Contas.UpdateFields(p.ID, map[string]interface{}{"valor": valores[i]}); err != nil {
				return nil, err
			}
			res.Modificadas++
			if p.CartaoID != nil {
				faturas.marca(*p.CartaoID, p.DataVencimento)
			}
		}
		if err := s.Contas.UpdateFields(macro.ID, map[string]interface{}{
			"valor": *req.ValorTotal, "valor_total": *req.ValorTotal,
		}); err != nil {
			return nil, err
		}
		if parcelas, err = s.Contas.ListParcelasByGrupo(grupoID, req.EmpresaID); err != nil {
			return nil, err
		}
	}

	// Etapa 2: mudança de quantidade. A lista de substituição, quando
	// presente, tem precedência e já implica a nova contagem.
	if len(req.ParcelasAtualizadas) == 0 && req.NovaQuantidade != nil &&
		*req.NovaQuantidade > 0 && *req.NovaQuantidade != len(parcelas) {
		if err := s.aplicarQuantidade(grupoID, macro, parcelas, req, *req.NovaQuantidade, res, faturas); err != nil {
			return nil, err
		}
		if err := s.Contas.UpdateFields(macro.ID, map[string]interface{}{"total_parcelas": *req.NovaQuantidade}); err != nil {
			return nil, err
		}
		if parcelas, err = s.Contas.ListParcelasByGrupo(grupoID, req.EmpresaID); err != nil {
			return nil, err
		}
	}

	// Etapa 3: broadcast incondicional dos campos compartilhados para todas
	// as parcelas e para a macro.
	campos := map[string]interface{}{}
	if req.Descricao != nil {
		campos["descricao"] = *req.Descricao
	}
	if req.Beneficiario != nil {
		campos["beneficiario"] = *req.Beneficiario
	}
	if req.CodigoTipo != nil {
		campos["codigo_tipo"] = *req.CodigoTipo
		socioID, _, _ := s.resolverSocio(*req.CodigoTipo, req.EmpresaID)
		campos["socio_responsavel_id"] = socioID
	}
	if len(campos) > 0 {
		for _, p := range parcelas {
			if err := s.Contas.UpdateFields(p.ID, campos); err != nil {
				return nil, err
			}
		}
		if err := s.Contas.UpdateFields(macro.ID, campos); err != nil {
			return nil, err
		}
		if parcelas, err = s.Contas.ListParcelasByGrupo(grupoID, req.EmpresaID); err != nil {
			return nil, err
		}
	}

	// Etapa 4: lista de substituição por parcela, fonte autoritativa do
	// conjunto final quando presente.
	if len(req.ParcelasAtualizadas) > 0 {
		mexido, err := s.aplicarSubstituicao(grupoID, macro, parcelas, req, res, faturas)
		if err != nil {
			return nil, err
		}
		fluxoMexido = fluxoMexido || mexido
		if parcelas, err = s.Contas.ListParcelasByGrupo(grupoID, req.EmpresaID); err != nil {
			return nil, err
		}
	}

	// Etapa 5: renumeração contígua, ordenada por vencimento. No modo
	// valor_parcela o número inicial histórico da primeira sobrevivente é
	// preservado; nos demais, a contagem parte de 1.
	modo := req.TipoParcelamento
	if modo == "" {
		modo = macro.TipoParcelamento
	}
	inicio := 1
	if modo == ModoValorParcela && len(parcelas) > 0 {
		if m := reNumeroParcela.FindStringSubmatch(parcelas[0].NumeroParcela); m != nil {
			inicio, _ = strconv.Atoi(m[1])
		}
	}
	for i, p := range parcelas {
		num := fmt.Sprintf("%d/%d", inicio+i, len(parcelas))
		if p.NumeroParcela == num && p.TotalParcelas == len(parcelas) {
			continue
		}
		if err := s.Contas.UpdateFields(p.ID, map[string]interface{}{
			"numero_parcela": num, "total_parcelas": len(parcelas),
		}); err != nil {
			return nil, err
		}
	}
	if parcelas, err = s.Contas.ListParcelasByGrupo(grupoID, req.EmpresaID); err != nil {
		return nil, err
	}

	// Etapa 6: sincronização final da macro e delta no centro de custo.
	valores := make([]float64, 0, len(parcelas))
	for _, p := range parcelas {
		valores = append(valores, p.Valor)
	}
	totalFinal := moeda.Somar(valores)
	if err := s.Contas.UpdateFields(macro.ID, map[string]interface{}{
		"valor": totalFinal, "valor_total": totalFinal, "total_parcelas": len(parcelas),
	}); err != nil {
		return nil, err
	}

	codigoFinal := macro.CodigoTipo
	if req.CodigoTipo != nil {
		codigoFinal = *req.CodigoTipo
	}
	socioID, campoPrevisto, _ := s.resolverSocio(codigoFinal, req.EmpresaID)
	if codigoFinal != "" && moeda.Diferente(totalFinal, preTotal) {
		delta, _ := decimal.NewFromFloat(totalFinal).
			Sub(decimal.NewFromFloat(preTotal)).Round(2).Float64()
		s.efeito("centro-custo-delta", grupoID, func() error {
			_, err := s.Centros.AcrescentarComPropagacao(codigoFinal, req.EmpresaID, campoPrevisto, delta)
			return err
		})
	}

	// Etapa 7: recálculos derivados.
	for cartaoID, meses := range faturas {
		for _, ref := range meses {
			cartaoID, ref := cartaoID, ref
			s.efeito("recalculo-fatura", grupoID, func() error {
				_, err := s.Faturas.RecalcularFatura(cartaoID, ref)
				return err
			})
		}
	}
	if fluxoMexido {
		s.efeito("recalculo-saldos", grupoID, func() error {
			return s.Fluxo.RecalcularSaldos(req.EmpresaID)
		})
	}
	if socioID != nil {
		s.efeito("recalculo-prolabore", grupoID, func() error {
			return s.ProLabore.Recalcular(*socioID, time.Now())
		})
	}

	// Etapa 8: histórico, nunca bloqueante.
	if alteracao != nil {
		snapJSON, _ := json.Marshal(snapAnterior)
		macroID := macro.ID
		entrada := &historico.HistoricoParcelamento{
			GrupoParcelamentoID: grupoID,
			ContaMacroID:        &macroID,
			TipoAlteracao:       alteracao.Tipo,
			Descricao:           alteracao.Descricao,
			SnapshotAnterior:    string(snapJSON),
			ValorTotalAnterior:  preTotal,
			ValorTotalNovo:      totalFinal,
			ParcelasAnterior:    snapAnterior.TotalParcelas,
			ParcelasNovo:        len(parcelas),
			UsuarioID:           req.UsuarioID,
			EmpresaID:           req.EmpresaID,
		}
		s.efeito("registro-historico", grupoID, func() error {
			return s.Historico.Create(entrada)
		})
	}

	res.Macro = &ResumoMacro{ID: macro.ID, ValorTotal: totalFinal, TotalParcelas: len(parcelas)}
	return res, nil
}

// aplicarQuantidade cresce ou encolhe o plano para a nova contagem,
// redistribuindo o total vigente igualmente entre as parcelas finais.
func (s *Service) aplicarQuantidade(grupoID string, macro *conta.Conta, parcelas []conta.Conta,
	req EdicaoRequest, novo int, res *EdicaoResultado, faturas marcadorFaturas) error {

	atuais := make([]float64, 0, len(parcelas))
	for _, p := range parcelas {
		atuais = append(atuais, p.Valor)
	}
	total := moeda.Somar(atuais)
	valores := moeda.DividirIgualmente(total, novo)

	if novo > len(parcelas) {
		// Crescimento: atualiza as existentes e anexa as novas, com
		// vencimentos mensais a partir da última parcela existente.
		for i, p := range parcelas {
			if moeda.Diferente(p.Valor, valores[i]) {
				if err := s.Contas.UpdateFields(p.ID, map[string]interface{}{"valor": valores[i]}); err != nil {
					return err
				}
				res.Modificadas++
				if p.CartaoID != nil {
					faturas.marca(*p.CartaoID, p.DataVencimento)
				}
			}
		}
		modelo := parcelas[0]
		if req.Descricao != nil {
			modelo.Descricao = *req.Descricao
		}
		if req.Beneficiario != nil {
			modelo.Beneficiario = *req.Beneficiario
		}
		if req.CodigoTipo != nil {
			modelo.CodigoTipo = *req.CodigoTipo
		}
		ultimoVenc := parcelas[len(parcelas)-1].DataVencimento
		for j := len(parcelas); j < novo; j++ {
			venc := ultimoVenc.AddDate(0, j-len(parcelas)+1, 0)
			nova := conta.Conta{
				Descricao:           modelo.Descricao,
				Valor:               valores[j],
				DataVencimento:      venc,
				Status:              conta.StatusPendente,
				TotalParcelas:       novo,
				GrupoParcelamentoID: grupoID,
				TipoParcelamento:    modelo.TipoParcelamento,
				ParentID:            &macro.ID,
				CodigoTipo:          modelo.CodigoTipo,
				Beneficiario:        modelo.Beneficiario,
				Categoria:           modelo.Categoria,
				Subcategoria:        modelo.Subcategoria,
				Tipo:                modelo.Tipo,
				CartaoID:            modelo.CartaoID,
				ContaBancariaID:     modelo.ContaBancariaID,
				SocioResponsavelID:  modelo.SocioResponsavelID,
				EmpresaID:           modelo.EmpresaID,
			}
			if err := s.Contas.Create(&nova); err != nil {
				return err
			}
			res.Criadas++
			if nova.CartaoID != nil {
				faturas.marca(*nova.CartaoID, nova.DataVencimento)
			}
		}
		return nil
	}

	// Encolhimento: remove pendentes de vencimento mais tardio primeiro.
	// A guarda de redução já garantiu pendentes suficientes.
	remover := len(parcelas) - novo
	sobreviventes := make([]conta.Conta, 0, novo)
	for i := len(parcelas) - 1; i >= 0; i-- {
		p := parcelas[i]
		if remover > 0 && !p.Pago {
			if err := s.Fluxo.DeleteByConta(p.ID); err != nil {
				return err
			}
			if err := s.Contas.DeleteByID(p.ID); err != nil {
				return err
			}
			res.Removidas++
			remover--
			if p.CartaoID != nil {
				faturas.marca(*p.CartaoID, p.DataVencimento)
			}
			continue
		}
		sobreviventes = append([]conta.Conta{p}, sobreviventes...)
	}
	for i, p := range sobreviventes {
		if moeda.Diferente(p.Valor, valores[i]) {
			if err := s.Contas.UpdateFields(p.ID, map[string]interface{}{"valor": valores[i]}); err != nil {
				return err
			}
			res.Modificadas++
			if p.CartaoID != nil {
				faturas.marca(*p.CartaoID, p.DataVencimento)
			}
		}
	}
	return nil
}

// aplicarSubstituicao aplica a lista autoritativa de parcelas: atualiza as
// existentes, cria as sem id e remove as ausentes. Devolve se o fluxo de
// caixa foi tocado (flip de pagamento ou remoção de parcela paga).
func (s *Service) aplicarSubstituicao(grupoID string, macro *conta.Conta, parcelas []conta.Conta,
	req EdicaoRequest, res *EdicaoResultado, faturas marcadorFaturas) (bool, error) {

	porID := make(map[uint]conta.Conta, len(parcelas))
	for _, p := range parcelas {
		porID[p.ID] = p
	}
	presentes := make(map[uint]bool, len(req.ParcelasAtualizadas))
	fluxoMexido := false

	for _, pe := range req.ParcelasAtualizadas {
		atual, existe := conta.Conta{}, false
		if pe.ID > 0 {
			atual, existe = porID[uint(pe.ID)]
		}

		if !existe {
			// Parcela nova, vinculada à macro do grupo. Campos ausentes
			// herdam da macro.
			valor := 0.0
			if pe.Valor != nil {
				valor = *pe.Valor
			}
			venc := macro.DataVencimento
			if pe.DataVencimento != nil {
				venc = *pe.DataVencimento
			}
			nova := conta.Conta{
				Descricao:           macro.Descricao,
				Valor:               valor,
				DataVencimento:      venc,
				Pago:                pe.Pago,
				Status:              statusPara(pe),
				TotalParcelas:       len(parcelas),
				GrupoParcelamentoID: grupoID,
				TipoParcelamento:    macro.TipoParcelamento,
				ParentID:            &macro.ID,
				CodigoTipo:          macro.CodigoTipo,
				Beneficiario:        macro.Beneficiario,
				Categoria:           macro.Categoria,
				Subcategoria:        macro.Subcategoria,
				Tipo:                macro.Tipo,
				CartaoID:            macro.CartaoID,
				ContaBancariaID:     macro.ContaBancariaID,
				SocioResponsavelID:  macro.SocioResponsavelID,
				EmpresaID:           macro.EmpresaID,
			}
			if pe.Pago {
				dp := venc
				if pe.DataPagamento != nil {
					dp = *pe.DataPagamento
				}
				nova.DataPagamento = &dp
			}
			if err := s.Contas.Create(&nova); err != nil {
				return fluxoMexido, err
			}
			res.Criadas++
			if nova.Pago {
				fluxoMexido = true
				if err := s.Fluxo.Create(lancamentoPara(&nova)); err != nil {
					return fluxoMexido, err
				}
			}
			if nova.CartaoID != nil {
				faturas.marca(*nova.CartaoID, nova.DataVencimento)
			}
			continue
		}

		presentes[atual.ID] = true
		mudouStatus := atual.Pago != pe.Pago

		// Campos ausentes da instrução preservam o estado atual da parcela.
		valorFinal := atual.Valor
		mudouValor := false
		vencFinal := atual.DataVencimento
		campos := map[string]interface{}{
			"pago":   pe.Pago,
			"status": statusPara(pe),
		}
		if pe.Valor != nil {
			mudouValor = moeda.Diferente(atual.Valor, *pe.Valor)
			valorFinal = *pe.Valor
			campos["valor"] = valorFinal
		}
		if pe.DataVencimento != nil {
			vencFinal = *pe.DataVencimento
			campos["data_vencimento"] = vencFinal
		}
		if pe.Pago {
			dp := vencFinal
			if pe.DataPagamento != nil {
				dp = *pe.DataPagamento
			}
			campos["data_pagamento"] = &dp
		} else {
			campos["data_pagamento"] = nil
		}
		if err := s.Contas.UpdateFields(atual.ID, campos); err != nil {
			return fluxoMexido, err
		}
		res.Modificadas++

		if mudouStatus {
			fluxoMexido = true
			if pe.Pago {
				paga := atual
				paga.Valor = valorFinal
				paga.Pago = true
				dp := vencFinal
				if pe.DataPagamento != nil {
					dp = *pe.DataPagamento
				}
				paga.DataPagamento = &dp
				if err := s.Fluxo.Create(lancamentoPara(&paga)); err != nil {
					return fluxoMexido, err
				}
			} else {
				if err := s.Fluxo.DeleteByConta(atual.ID); err != nil {
					return fluxoMexido, err
				}
			}
		}
		if mudouValor && atual.CartaoID != nil {
			faturas.marca(*atual.CartaoID, atual.DataVencimento)
			faturas.marca(*atual.CartaoID, vencFinal)
		}
	}

	// Parcelas ausentes da lista são removidas do plano.
	for _, p := range parcelas {
		if presentes[p.ID] {
			continue
		}
		if p.Pago {
			fluxoMexido = true
			if err := s.Fluxo.DeleteByConta(p.ID); err != nil {
				return fluxoMexido, err
			}
		}
		if err := s.Contas.DeleteByID(p.ID); err != nil {
			return fluxoMexido, err
		}
		res.Removidas++
		if p.CartaoID != nil {
			faturas.marca(*p.CartaoID, p.DataVencimento)
		}
	}
	return fluxoMexido, nil
}

func statusPara(pe ParcelaEdicao) string {
	if pe.Status != "" {
		return pe.Status
	}
	if pe.Pago {
		return conta.StatusPago
	}
	return conta.StatusPendente
}
