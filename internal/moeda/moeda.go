// internal/moeda/moeda.go
package moeda

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tolerância usada em todas as comparações de valores monetários.
const Epsilon = 0.01

// Igual compara dois valores dentro da tolerância de um centavo.
func Igual(a, b float64) bool {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().
		LessThanOrEqual(decimal.NewFromFloat(Epsilon))
}

// Diferente é a negação de Igual, acima da tolerância de um centavo.
func Diferente(a, b float64) bool {
	return !Igual(a, b)
}

// Arredondar normaliza um valor para duas casas decimais.
func Arredondar(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// DividirIgualmente divide um total em n parcelas de valores exatos em centavos.
// Todas as parcelas recebem o quociente truncado em duas casas; a última absorve
// a sobra, de modo que a soma das parcelas é exatamente igual ao total.
func DividirIgualmente(total float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	tot := decimal.NewFromFloat(total).Round(2)
	base := tot.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	valores := make([]float64, n)
	for i := 0; i < n-1; i++ {
		valores[i], _ = base.Float64()
	}
	ultima := tot.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
	valores[n-1], _ = ultima.Float64()
	return valores
}

// Somar soma uma lista de valores com aritmética decimal exata.
func Somar(valores []float64) float64 {
	soma := decimal.Zero
	for _, v := range valores {
		soma = soma.Add(decimal.NewFromFloat(v))
	}
	f, _ := soma.Round(2).Float64()
	return f
}

// FormatarBRL formata um valor como "R$ 1234.56".
func FormatarBRL(v float64) string {
	return fmt.Sprintf("R$ %s", decimal.NewFromFloat(v).StringFixed(2))
}
