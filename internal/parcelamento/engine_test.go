package parcelamento

import (
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaolivre/api-financeiro/internal/centrocusto"
	"github.com/gestaolivre/api-financeiro/internal/conta"
	"github.com/gestaolivre/api-financeiro/internal/historico"
	"github.com/gestaolivre/api-financeiro/internal/moeda"
)

type ambiente struct {
	contas    *memContas
	centros   *memCentros
	fluxo     *memFluxo
	hist      *memHistorico
	faturas   *memFaturas
	prolabore *memProLabore
	svc       *Service
}

func novoAmbiente(centros ...*centrocusto.CentroCusto) *ambiente {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	a := &ambiente{
		contas:    newMemContas(),
		centros:   newMemCentros(centros...),
		fluxo:     &memFluxo{},
		hist:      &memHistorico{},
		faturas:   &memFaturas{},
		prolabore: &memProLabore{},
	}
	a.svc = NewService(a.contas, a.centros, a.fluxo, a.hist, a.faturas, a.prolabore, logger)
	return a
}

func centroADM() *centrocusto.CentroCusto {
	return &centrocusto.CentroCusto{ID: 10, Sigla: "ADM", Nome: "Administrativo", EmpresaID: 1}
}

func vencimento(ano, mes, dia int) time.Time {
	return time.Date(ano, time.Month(mes), dia, 0, 0, 0, 0, time.UTC)
}

func ptrValor(v float64) *float64 { return &v }

func ptrData(t time.Time) *time.Time { return &t }

// criarPlanoPadrao monta o cenário base: 3 parcelas de 100.00 a partir de
// 2026-01-15.
func (a *ambiente) criarPlanoPadrao(t *testing.T) *PlanoCriado {
	t.Helper()
	plano, err := a.svc.CriarParcelamento(CriacaoRequest{
		Descricao:          "Aluguel galpão",
		ValorParcela:       100.00,
		PrimeiroVencimento: vencimento(2026, 1, 15),
		TotalParcelas:      3,
		CodigoTipo:         "ADM",
		Beneficiario:       "Imobiliária Central",
		Tipo:               "saida",
		EmpresaID:          1,
		UsuarioID:          7,
	})
	require.NoError(t, err)
	return plano
}

func (a *ambiente) parcelasDoGrupo(t *testing.T, grupoID string) []conta.Conta {
	t.Helper()
	parcelas, err := a.contas.ListParcelasByGrupo(grupoID, 1)
	require.NoError(t, err)
	return parcelas
}

func (a *ambiente) macroDoGrupo(t *testing.T, grupoID string) *conta.Conta {
	t.Helper()
	macro, err := a.contas.FindMacroByGrupo(grupoID, 1)
	require.NoError(t, err)
	return macro
}

func verificarInvarianteSoma(t *testing.T, macro *conta.Conta, parcelas []conta.Conta) {
	t.Helper()
	valores := make([]float64, 0, len(parcelas))
	for _, p := range parcelas {
		valores = append(valores, p.Valor)
	}
	soma := moeda.Somar(valores)
	assert.InDelta(t, soma, macro.Valor, moeda.Epsilon, "soma das parcelas deve bater com macro.Valor")
	assert.InDelta(t, soma, macro.ValorTotal, moeda.Epsilon, "soma das parcelas deve bater com macro.ValorTotal")
	assert.Equal(t, len(parcelas), macro.TotalParcelas)
}

/* ================================ Criação ================================ */

func TestCriarParcelamentoCenarioA(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)

	require.NotNil(t, plano.Macro)
	assert.True(t, plano.Macro.IsContaMacro)
	assert.False(t, plano.Macro.Pago)
	assert.Equal(t, 300.00, plano.Macro.ValorTotal)
	assert.Equal(t, 3, plano.Macro.TotalParcelas)

	parcelas := a.parcelasDoGrupo(t, plano.Macro.GrupoParcelamentoID)
	require.Len(t, parcelas, 3)
	for i, p := range parcelas {
		assert.Equal(t, 100.00, p.Valor)
		assert.Equal(t, fmt.Sprintf("%d/3", i+1), p.NumeroParcela)
		assert.Equal(t, vencimento(2026, 1+i, 15), p.DataVencimento)
		require.NotNil(t, p.ParentID)
		assert.Equal(t, plano.Macro.ID, *p.ParentID)
	}
	verificarInvarianteSoma(t, a.macroDoGrupo(t, plano.Macro.GrupoParcelamentoID), parcelas)

	// Previsto do centro de custo recebe o total do plano.
	require.NotEmpty(t, a.centros.incrementos)
	assert.Equal(t, incremento{Sigla: "ADM", Campo: centrocusto.CampoPrevisto, Delta: 300.00}, a.centros.incrementos[0])
}

func TestCriarParcelamentoPrimeiraPaga(t *testing.T) {
	a := novoAmbiente(centroADM())
	pagamento := vencimento(2026, 1, 15)
	plano, err := a.svc.CriarParcelamento(CriacaoRequest{
		Descricao:             "Compra equipamento",
		ValorParcela:          50.00,
		PrimeiroVencimento:    vencimento(2026, 1, 15),
		TotalParcelas:         2,
		PrimeiraPaga:          true,
		DataPagamentoPrimeira: &pagamento,
		EmpresaID:             1,
	})
	require.NoError(t, err)

	parcelas := a.parcelasDoGrupo(t, plano.Macro.GrupoParcelamentoID)
	require.Len(t, parcelas, 2)
	assert.True(t, parcelas[0].Pago)
	assert.Equal(t, conta.StatusPago, parcelas[0].Status)
	assert.False(t, parcelas[1].Pago)

	// Só a parcela paga entra no fluxo de caixa; a macro nunca.
	require.Len(t, a.fluxo.lancamentos, 1)
	require.NotNil(t, a.fluxo.lancamentos[0].ContaID)
	assert.Equal(t, parcelas[0].ID, *a.fluxo.lancamentos[0].ContaID)
}

func TestCriarParcelamentoRejeitaParcelaUnica(t *testing.T) {
	a := novoAmbiente()
	_, err := a.svc.CriarParcelamento(CriacaoRequest{
		Descricao:          "Conta avulsa",
		ValorParcela:       80.00,
		PrimeiroVencimento: vencimento(2026, 2, 1),
		TotalParcelas:      1,
		EmpresaID:          1,
	})
	assert.Error(t, err)
}

/* ================================ Edição ================================ */

func TestEdicaoValorTotalCenarioB(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	grupoID := plano.Macro.GrupoParcelamentoID

	novoTotal := 330.00
	res, err := a.svc.AplicarEdicao(grupoID, EdicaoRequest{ValorTotal: &novoTotal, EmpresaID: 1})
	require.NoError(t, err)

	parcelas := a.parcelasDoGrupo(t, grupoID)
	require.Len(t, parcelas, 3)
	for _, p := range parcelas {
		assert.Equal(t, 110.00, p.Valor)
	}
	macro := a.macroDoGrupo(t, grupoID)
	assert.Equal(t, 330.00, macro.Valor)
	verificarInvarianteSoma(t, macro, parcelas)
	assert.Equal(t, 330.00, res.Macro.ValorTotal)

	require.Len(t, a.hist.entradas, 1)
	entrada := a.hist.entradas[0]
	assert.Equal(t, historico.TipoValorTotal, entrada.TipoAlteracao)
	assert.Contains(t, entrada.Descricao, "R$ 300.00")
	assert.Contains(t, entrada.Descricao, "R$ 330.00")
	assert.Equal(t, 300.00, entrada.ValorTotalAnterior)
	assert.Equal(t, 330.00, entrada.ValorTotalNovo)
}

func TestEdicaoQuantidadeCenarioC(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	grupoID := plano.Macro.GrupoParcelamentoID

	nova := 5
	res, err := a.svc.AplicarEdicao(grupoID, EdicaoRequest{NovaQuantidade: &nova, EmpresaID: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Criadas)

	parcelas := a.parcelasDoGrupo(t, grupoID)
	require.Len(t, parcelas, 5)
	for i, p := range parcelas {
		assert.Equal(t, 60.00, p.Valor)
		assert.Equal(t, fmt.Sprintf("%d/5", i+1), p.NumeroParcela)
		assert.Equal(t, 5, p.TotalParcelas)
	}
	assert.Equal(t, vencimento(2026, 4, 15), parcelas[3].DataVencimento)
	assert.Equal(t, vencimento(2026, 5, 15), parcelas[4].DataVencimento)

	macro := a.macroDoGrupo(t, grupoID)
	verificarInvarianteSoma(t, macro, parcelas)
	assert.Equal(t, 300.00, macro.ValorTotal)

	require.Len(t, a.hist.entradas, 1)
	assert.Equal(t, historico.TipoQuantidade, a.hist.entradas[0].TipoAlteracao)
	assert.Equal(t, 3, a.hist.entradas[0].ParcelasAnterior)
	assert.Equal(t, 5, a.hist.entradas[0].ParcelasNovo)
}

func TestEdicaoQuantidadeEncolher(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	grupoID := plano.Macro.GrupoParcelamentoID

	nova := 2
	res, err := a.svc.AplicarEdicao(grupoID, EdicaoRequest{NovaQuantidade: &nova, EmpresaID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removidas)

	parcelas := a.parcelasDoGrupo(t, grupoID)
	require.Len(t, parcelas, 2)
	// Pendentes de vencimento mais tardio saem primeiro: sobram jan e fev.
	assert.Equal(t, vencimento(2026, 1, 15), parcelas[0].DataVencimento)
	assert.Equal(t, vencimento(2026, 2, 15), parcelas[1].DataVencimento)
	for i, p := range parcelas {
		assert.Equal(t, 150.00, p.Valor)
		assert.Equal(t, fmt.Sprintf("%d/2", i+1), p.NumeroParcela)
	}
	verificarInvarianteSoma(t, a.macroDoGrupo(t, grupoID), parcelas)
}

func TestEdicaoParcelasAtualizadasCenarioD(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	grupoID := plano.Macro.GrupoParcelamentoID
	parcelas := a.parcelasDoGrupo(t, grupoID)

	pagamento := vencimento(2026, 1, 15)
	req := EdicaoRequest{EmpresaID: 1}
	for i, p := range parcelas {
		pe := ParcelaEdicao{
			ID:             int(p.ID),
			Valor:          ptrValor(p.Valor),
			DataVencimento: ptrData(p.DataVencimento),
		}
		if i == 0 {
			pe.Pago = true
			pe.DataPagamento = &pagamento
		}
		req.ParcelasAtualizadas = append(req.ParcelasAtualizadas, pe)
	}

	_, err := a.svc.AplicarEdicao(grupoID, req)
	require.NoError(t, err)

	depois := a.parcelasDoGrupo(t, grupoID)
	assert.True(t, depois[0].Pago)
	require.NotNil(t, depois[0].DataPagamento)
	assert.False(t, depois[1].Pago)
	assert.False(t, depois[2].Pago)

	// Lançamento de fluxo só para a parcela paga.
	require.Len(t, a.fluxo.lancamentos, 1)
	assert.Equal(t, depois[0].ID, *a.fluxo.lancamentos[0].ContaID)
	assert.Positive(t, a.fluxo.recalculos)

	// Flip puro de pagamento, sem mudança de valor ou data, não gera
	// entrada de histórico: o detector classifica apenas quantidade, valor
	// total e edições individuais.
	assert.Empty(t, a.hist.entradas)

	// A macro segue impagável.
	macro := a.macroDoGrupo(t, grupoID)
	assert.False(t, macro.Pago)
	for _, l := range a.fluxo.lancamentos {
		require.NotNil(t, l.ContaID)
		assert.NotEqual(t, macro.ID, *l.ContaID)
	}
}

func TestEdicaoPagamentoViaJSONSemVencimentoPreservaDatas(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	grupoID := plano.Macro.GrupoParcelamentoID
	parcelas := a.parcelasDoGrupo(t, grupoID)

	// Corpo como o frontend manda ao pagar uma parcela: cada entrada traz só
	// id, valor, pago e dataPagamento. O vencimento omitido tem de ser
	// preservado, nunca zerado.
	corpo := fmt.Sprintf(`{
		"parcelasAtualizadas": [
			{"id": %d, "valor": 100, "pago": true, "dataPagamento": "2026-01-15T00:00:00Z"},
			{"id": %d, "valor": 100, "pago": false},
			{"id": %d, "valor": 100, "pago": false}
		]
	}`, parcelas[0].ID, parcelas[1].ID, parcelas[2].ID)

	var req EdicaoRequest
	require.NoError(t, json.Unmarshal([]byte(corpo), &req))
	req.EmpresaID = 1

	_, err := a.svc.AplicarEdicao(grupoID, req)
	require.NoError(t, err)

	depois := a.parcelasDoGrupo(t, grupoID)
	require.Len(t, depois, 3)
	for i, p := range depois {
		assert.Equal(t, parcelas[i].ID, p.ID, "ordem por vencimento inalterada")
		assert.Equal(t, parcelas[i].DataVencimento, p.DataVencimento)
		assert.Equal(t, fmt.Sprintf("%d/3", i+1), p.NumeroParcela)
	}
	assert.True(t, depois[0].Pago)
	require.NotNil(t, depois[0].DataPagamento)
	assert.Equal(t, vencimento(2026, 1, 15), *depois[0].DataPagamento)

	// Flip puro: sem nota espúria de vencimento, sem histórico.
	assert.Empty(t, a.hist.entradas)
	require.Len(t, a.fluxo.lancamentos, 1)
}

func TestGuardaReducaoCenarioE(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	grupoID := plano.Macro.GrupoParcelamentoID
	parcelas := a.parcelasDoGrupo(t, grupoID)

	// Duas parcelas pagas, uma pendente.
	pagamento := vencimento(2026, 1, 20)
	for _, p := range parcelas[:2] {
		require.NoError(t, a.contas.UpdateFields(p.ID, map[string]interface{}{
			"pago": true, "status": conta.StatusPago, "data_pagamento": &pagamento,
		}))
	}

	nova := 1
	_, err := a.svc.AplicarEdicao(grupoID, EdicaoRequest{NovaQuantidade: &nova, EmpresaID: 1})
	require.Error(t, err)

	var reducao *ErrReducaoInvalida
	require.ErrorAs(t, err, &reducao)
	assert.Equal(t, 2, reducao.Pagas)
	assert.Equal(t, 1, reducao.Pendentes)
	assert.Equal(t, 2, reducao.Remover)

	// Nada foi alterado: rejeição sem mutação parcial.
	depois := a.parcelasDoGrupo(t, grupoID)
	require.Len(t, depois, 3)
	for i, p := range depois {
		assert.Equal(t, parcelas[i].ID, p.ID)
		assert.Equal(t, 100.00, p.Valor)
	}
	macro := a.macroDoGrupo(t, grupoID)
	assert.Equal(t, 300.00, macro.ValorTotal)
	assert.Equal(t, 3, macro.TotalParcelas)
	assert.Empty(t, a.hist.entradas)
}

func TestEdicaoRemocaoPorListaAutoritativa(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	grupoID := plano.Macro.GrupoParcelamentoID
	parcelas := a.parcelasDoGrupo(t, grupoID)

	// Mantém as duas primeiras; a terceira, ausente da lista, é removida.
	req := EdicaoRequest{EmpresaID: 1}
	for _, p := range parcelas[:2] {
		req.ParcelasAtualizadas = append(req.ParcelasAtualizadas, ParcelaEdicao{
			ID:             int(p.ID),
			Valor:          ptrValor(p.Valor),
			DataVencimento: ptrData(p.DataVencimento),
		})
	}

	res, err := a.svc.AplicarEdicao(grupoID, req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removidas)

	depois := a.parcelasDoGrupo(t, grupoID)
	require.Len(t, depois, 2)
	for i, p := range depois {
		assert.Equal(t, fmt.Sprintf("%d/2", i+1), p.NumeroParcela)
		assert.Equal(t, 2, p.TotalParcelas)
	}
	verificarInvarianteSoma(t, a.macroDoGrupo(t, grupoID), depois)

	require.Len(t, a.hist.entradas, 1)
	assert.Equal(t, historico.TipoEdicaoIndividual, a.hist.entradas[0].TipoAlteracao)
	assert.Contains(t, a.hist.entradas[0].Descricao, "removida")
}

func TestEdicaoBroadcastCamposCompartilhados(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	grupoID := plano.Macro.GrupoParcelamentoID

	descricao := "Aluguel galpão reajustado"
	beneficiario := "Imobiliária Norte"
	_, err := a.svc.AplicarEdicao(grupoID, EdicaoRequest{
		Descricao:    &descricao,
		Beneficiario: &beneficiario,
		EmpresaID:    1,
	})
	require.NoError(t, err)

	for _, p := range a.parcelasDoGrupo(t, grupoID) {
		assert.Equal(t, descricao, p.Descricao)
		assert.Equal(t, beneficiario, p.Beneficiario)
	}
	macro := a.macroDoGrupo(t, grupoID)
	assert.Equal(t, descricao, macro.Descricao)
	assert.Equal(t, beneficiario, macro.Beneficiario)
}

func TestEdicaoRenumeracaoModoValorParcela(t *testing.T) {
	a := novoAmbiente(centroADM())
	// Plano importado a partir da parcela 4 de 6, modo valor_parcela.
	plano, err := a.svc.CriarParcelamento(CriacaoRequest{
		Descricao:          "Financiamento veículo",
		ValorParcela:       200.00,
		PrimeiroVencimento: vencimento(2026, 1, 10),
		TotalParcelas:      6,
		ParcelaInicial:     4,
		TipoParcelamento:   ModoValorParcela,
		EmpresaID:          1,
	})
	require.NoError(t, err)
	grupoID := plano.Macro.GrupoParcelamentoID

	parcelas := a.parcelasDoGrupo(t, grupoID)
	require.Len(t, parcelas, 3)
	assert.Equal(t, "4/6", parcelas[0].NumeroParcela)

	// Qualquer edição renumera preservando o número inicial histórico.
	descricao := "Financiamento veículo (renegociado)"
	_, err = a.svc.AplicarEdicao(grupoID, EdicaoRequest{Descricao: &descricao, EmpresaID: 1})
	require.NoError(t, err)

	depois := a.parcelasDoGrupo(t, grupoID)
	require.Len(t, depois, 3)
	assert.Equal(t, "4/3", depois[0].NumeroParcela)
	assert.Equal(t, "5/3", depois[1].NumeroParcela)
	assert.Equal(t, "6/3", depois[2].NumeroParcela)
}

func TestEdicaoGrupoNaoEncontrado(t *testing.T) {
	a := novoAmbiente()
	nova := 4
	_, err := a.svc.AplicarEdicao("grupo-inexistente", EdicaoRequest{NovaQuantidade: &nova, EmpresaID: 1})
	assert.ErrorIs(t, err, ErrGrupoNaoEncontrado)
}

func TestEdicaoHistoricoFalhaNaoAborta(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	a.hist.falhar = true

	novoTotal := 360.00
	res, err := a.svc.AplicarEdicao(plano.Macro.GrupoParcelamentoID, EdicaoRequest{
		ValorTotal: &novoTotal, EmpresaID: 1,
	})
	require.NoError(t, err, "falha de histórico nunca aborta a edição")
	assert.Equal(t, 360.00, res.Macro.ValorTotal)
}

func TestEdicaoDeltaCentroCusto(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	a.centros.incrementos = nil

	novoTotal := 450.00
	_, err := a.svc.AplicarEdicao(plano.Macro.GrupoParcelamentoID, EdicaoRequest{
		ValorTotal: &novoTotal, EmpresaID: 1,
	})
	require.NoError(t, err)

	require.Len(t, a.centros.incrementos, 1)
	assert.Equal(t, incremento{Sigla: "ADM", Campo: centrocusto.CampoPrevisto, Delta: 150.00}, a.centros.incrementos[0])
}

func TestNormalizacaoGrupoLegado(t *testing.T) {
	a := novoAmbiente(centroADM())
	// Grupo legado: parcelas com grupo_parcelamento_id mas sem macro.
	for i := 1; i <= 2; i++ {
		require.NoError(t, a.contas.Create(&conta.Conta{
			Descricao:           "Serviço contábil",
			Valor:               90.00,
			DataVencimento:      vencimento(2026, 3, i*10),
			Status:              conta.StatusPendente,
			NumeroParcela:       fmt.Sprintf("%d/2", i),
			TotalParcelas:       2,
			GrupoParcelamentoID: "grupo-legado",
			EmpresaID:           1,
		}))
	}

	novoTotal := 200.00
	_, err := a.svc.AplicarEdicao("grupo-legado", EdicaoRequest{ValorTotal: &novoTotal, EmpresaID: 1})
	require.NoError(t, err)

	macro := a.macroDoGrupo(t, "grupo-legado")
	assert.True(t, macro.IsContaMacro)
	parcelas := a.parcelasDoGrupo(t, "grupo-legado")
	require.Len(t, parcelas, 2)
	for _, p := range parcelas {
		require.NotNil(t, p.ParentID)
		assert.Equal(t, macro.ID, *p.ParentID)
	}
	verificarInvarianteSoma(t, macro, parcelas)
}

func TestEdicaoPorIDNumericoDaMacro(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)

	novoTotal := 303.00
	res, err := a.svc.AplicarEdicao(fmt.Sprint(plano.Macro.ID), EdicaoRequest{
		ValorTotal: &novoTotal, EmpresaID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 303.00, res.Macro.ValorTotal)
}

func TestEdicaoDivisaoComSobraMantemSomaExata(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	grupoID := plano.Macro.GrupoParcelamentoID

	novoTotal := 100.00
	_, err := a.svc.AplicarEdicao(grupoID, EdicaoRequest{ValorTotal: &novoTotal, EmpresaID: 1})
	require.NoError(t, err)

	parcelas := a.parcelasDoGrupo(t, grupoID)
	require.Len(t, parcelas, 3)
	assert.Equal(t, 33.33, parcelas[0].Valor)
	assert.Equal(t, 33.33, parcelas[1].Valor)
	assert.Equal(t, 33.34, parcelas[2].Valor)
	verificarInvarianteSoma(t, a.macroDoGrupo(t, grupoID), parcelas)
}

/* ================================ Exclusão ================================ */

func TestExcluirGrupo(t *testing.T) {
	a := novoAmbiente(centroADM())
	plano := a.criarPlanoPadrao(t)
	grupoID := plano.Macro.GrupoParcelamentoID
	parcelas := a.parcelasDoGrupo(t, grupoID)

	// Paga a primeira parcela antes de excluir.
	pagamento := vencimento(2026, 1, 18)
	req := EdicaoRequest{EmpresaID: 1}
	for i, p := range parcelas {
		pe := ParcelaEdicao{ID: int(p.ID), Valor: ptrValor(p.Valor), DataVencimento: ptrData(p.DataVencimento)}
		if i == 0 {
			pe.Pago = true
			pe.DataPagamento = &pagamento
		}
		req.ParcelasAtualizadas = append(req.ParcelasAtualizadas, pe)
	}
	_, err := a.svc.AplicarEdicao(grupoID, req)
	require.NoError(t, err)
	require.Len(t, a.fluxo.lancamentos, 1)
	a.centros.incrementos = nil
	recalculosAntes := a.fluxo.recalculos

	res, err := a.svc.ExcluirGrupo(grupoID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Removidas)

	_, err = a.contas.FindMacroByGrupo(grupoID, 1)
	assert.Error(t, err)
	assert.Empty(t, a.parcelasDoGrupo(t, grupoID))
	assert.Empty(t, a.fluxo.lancamentos, "fluxo da parcela paga é desvinculado")
	assert.Greater(t, a.fluxo.recalculos, recalculosAntes, "série de saldos é refeita")

	// Estornos: previsto -300 e realizado -100.
	require.Len(t, a.centros.incrementos, 2)
	assert.Equal(t, incremento{Sigla: "ADM", Campo: centrocusto.CampoPrevisto, Delta: -300.00}, a.centros.incrementos[0])
	assert.Equal(t, incremento{Sigla: "ADM", Campo: centrocusto.CampoRealizado, Delta: -100.00}, a.centros.incrementos[1])
}

/* ============================ Sócio / pró-labore ============================ */

func TestCentroDeSocioUsaCamposDeDesconto(t *testing.T) {
	socio := &centrocusto.CentroCusto{ID: 22, Sigla: "SOC1", Nome: "Sócio Ana", IsSocio: true, EmpresaID: 1}
	a := novoAmbiente(socio)

	plano, err := a.svc.CriarParcelamento(CriacaoRequest{
		Descricao:          "Adiantamento sócia",
		ValorParcela:       500.00,
		PrimeiroVencimento: vencimento(2026, 2, 5),
		TotalParcelas:      2,
		CodigoTipo:         "SOC1",
		EmpresaID:          1,
	})
	require.NoError(t, err)

	require.NotEmpty(t, a.centros.incrementos)
	assert.Equal(t, centrocusto.CampoDescontoPrevisto, a.centros.incrementos[0].Campo)
	assert.Equal(t, 1000.00, a.centros.incrementos[0].Delta)

	// Pró-labore disparado e sócio vinculado às parcelas.
	assert.Contains(t, a.prolabore.chamadas, socio.ID)
	for _, p := range a.parcelasDoGrupo(t, plano.Macro.GrupoParcelamentoID) {
		require.NotNil(t, p.SocioResponsavelID)
		assert.Equal(t, socio.ID, *p.SocioResponsavelID)
	}
}
