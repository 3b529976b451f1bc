// internal/parcelamento/snapshot.go
package parcelamento

import (
	"fmt"
	"strings"
	"time"

	"github.com/gestaolivre/api-financeiro/internal/conta"
	"github.com/gestaolivre/api-financeiro/internal/historico"
	"github.com/gestaolivre/api-financeiro/internal/moeda"
)

// ParcelaSnapshot é o retrato de uma parcela num instante, com datas
// normalizadas para string ISO-8601.
type ParcelaSnapshot struct {
	ID             uint    `json:"id"`
	NumeroParcela  string  `json:"numeroParcela"`
	Valor          float64 `json:"valor"`
	DataVencimento string  `json:"dataVencimento"`
	Pago           bool    `json:"pago"`
	DataPagamento  *string `json:"dataPagamento"`
	Status         string  `json:"status"`
}

// Snapshot resume um grupo de parcelamento num instante. A ordem das parcelas
// é a mesma da entrada; quem precisar de determinismo deve ordenar por
// vencimento antes de construir.
type Snapshot struct {
	ValorTotal    float64           `json:"valorTotal"`
	TotalParcelas int               `json:"totalParcelas"`
	Descricao     string            `json:"descricao"`
	Beneficiario  string            `json:"beneficiario"`
	CodigoTipo    string            `json:"codigoTipo"`
	Parcelas      []ParcelaSnapshot `json:"parcelas"`
}

// ConstruirSnapshot monta o retrato atual de um grupo a partir das parcelas
// não-macro e, se existir, da conta macro. Função pura, sem efeitos.
func ConstruirSnapshot(parcelas []conta.Conta, macro *conta.Conta) Snapshot {
	snap := Snapshot{
		TotalParcelas: len(parcelas),
		Parcelas:      make([]ParcelaSnapshot, 0, len(parcelas)),
	}

	valores := make([]float64, 0, len(parcelas))
	for _, p := range parcelas {
		valores = append(valores, p.Valor)
		ps := ParcelaSnapshot{
			ID:             p.ID,
			NumeroParcela:  p.NumeroParcela,
			Valor:          p.Valor,
			DataVencimento: p.DataVencimento.Format(time.RFC3339),
			Pago:           p.Pago,
			Status:         p.Status,
		}
		if p.DataPagamento != nil {
			s := p.DataPagamento.Format(time.RFC3339)
			ps.DataPagamento = &s
		}
		snap.Parcelas = append(snap.Parcelas, ps)
	}
	snap.ValorTotal = moeda.Somar(valores)

	switch {
	case macro != nil:
		snap.Descricao = macro.Descricao
		snap.Beneficiario = macro.Beneficiario
		snap.CodigoTipo = macro.CodigoTipo
	case len(parcelas) > 0:
		snap.Descricao = parcelas[0].Descricao
		snap.Beneficiario = parcelas[0].Beneficiario
		snap.CodigoTipo = parcelas[0].CodigoTipo
	}
	return snap
}

// Alteracao classifica a mudança detectada numa edição.
type Alteracao struct {
	Tipo      string
	Descricao string
}

// DetectarTipoAlteracao compara o snapshot pré-edição com a requisição crua e
// classifica a alteração. A avaliação é por prioridade, primeira regra que
// casa vence (quantidade > valor total > edições individuais) e o resultado
// é sempre uma única classificação por edição, nunca uma união. Retorna nil
// quando nada auditável mudou.
func DetectarTipoAlteracao(anterior Snapshot, req EdicaoRequest) *Alteracao {
	if q := quantidadeSolicitada(req); q != nil && *q != anterior.TotalParcelas {
		return &Alteracao{
			Tipo: historico.TipoQuantidade,
			Descricao: fmt.Sprintf("Alterado de %d para %d parcelas",
				anterior.TotalParcelas, *q),
		}
	}

	if req.ValorTotal != nil && moeda.Diferente(*req.ValorTotal, anterior.ValorTotal) {
		return &Alteracao{
			Tipo: historico.TipoValorTotal,
			Descricao: fmt.Sprintf("Valor total alterado de %s para %s",
				moeda.FormatarBRL(anterior.ValorTotal), moeda.FormatarBRL(*req.ValorTotal)),
		}
	}

	if len(req.ParcelasAtualizadas) > 0 {
		porID := make(map[uint]ParcelaSnapshot, len(anterior.Parcelas))
		for _, p := range anterior.Parcelas {
			porID[p.ID] = p
		}

		var notas []string
		presentes := make(map[uint]bool, len(req.ParcelasAtualizadas))
		for _, pe := range req.ParcelasAtualizadas {
			if pe.ID <= 0 {
				notas = append(notas, "nova parcela adicionada")
				continue
			}
			ant, ok := porID[uint(pe.ID)]
			if !ok {
				notas = append(notas, "nova parcela adicionada")
				continue
			}
			presentes[uint(pe.ID)] = true
			if pe.Valor != nil && moeda.Diferente(*pe.Valor, ant.Valor) {
				notas = append(notas, fmt.Sprintf("parcela %s: valor alterado de %s para %s",
					ant.NumeroParcela, moeda.FormatarBRL(ant.Valor), moeda.FormatarBRL(*pe.Valor)))
			}
			// Campo ausente preserva a data; presente, compara apenas a
			// porção de data, ignorando horário.
			if pe.DataVencimento != nil && pe.DataVencimento.Format("2006-01-02") != ant.DataVencimento[:10] {
				notas = append(notas, fmt.Sprintf("parcela %s: vencimento alterado para %s",
					ant.NumeroParcela, pe.DataVencimento.Format("2006-01-02")))
			}
		}
		for _, p := range anterior.Parcelas {
			if !presentes[p.ID] {
				notas = append(notas, fmt.Sprintf("parcela %s removida", p.NumeroParcela))
			}
		}

		if len(notas) > 0 {
			desc := strings.Join(primeiras(notas, 3), "; ")
			if n := len(notas) - 3; n > 0 {
				desc += fmt.Sprintf(" (+%d)", n)
			}
			return &Alteracao{Tipo: historico.TipoEdicaoIndividual, Descricao: desc}
		}
	}

	return nil
}

// quantidadeSolicitada unifica os dois nomes aceitos para a nova contagem.
func quantidadeSolicitada(req EdicaoRequest) *int {
	if req.NovaQuantidade != nil {
		return req.NovaQuantidade
	}
	return req.TotalParcelas
}

func primeiras(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
