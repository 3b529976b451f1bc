package moeda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDividirIgualmenteExato(t *testing.T) {
	valores := DividirIgualmente(300.00, 3)
	require.Len(t, valores, 3)
	assert.Equal(t, []float64{100.00, 100.00, 100.00}, valores)
}

func TestDividirIgualmenteComSobra(t *testing.T) {
	// 100 / 3 = 33.33 truncado; a última parcela absorve a sobra de 0.01.
	valores := DividirIgualmente(100.00, 3)
	require.Len(t, valores, 3)
	assert.Equal(t, 33.33, valores[0])
	assert.Equal(t, 33.33, valores[1])
	assert.Equal(t, 33.34, valores[2])
	assert.Equal(t, 100.00, Somar(valores))
}

func TestDividirIgualmenteSomaSempreExata(t *testing.T) {
	casos := []struct {
		total float64
		n     int
	}{
		{330.00, 3},
		{1000.00, 7},
		{59.99, 12},
		{0.05, 4},
	}
	for _, c := range casos {
		valores := DividirIgualmente(c.total, c.n)
		require.Len(t, valores, c.n)
		assert.Equal(t, c.total, Somar(valores), "total=%v n=%d", c.total, c.n)
	}
}

func TestDividirIgualmenteNInvalido(t *testing.T) {
	assert.Nil(t, DividirIgualmente(100, 0))
	assert.Nil(t, DividirIgualmente(100, -2))
}

func TestIgualTolerancia(t *testing.T) {
	assert.True(t, Igual(100.00, 100.009))
	assert.True(t, Igual(100.00, 100.01))
	assert.False(t, Igual(100.00, 100.02))
	assert.True(t, Diferente(300.00, 330.00))
}

func TestFormatarBRL(t *testing.T) {
	assert.Equal(t, "R$ 300.00", FormatarBRL(300))
	assert.Equal(t, "R$ 33.34", FormatarBRL(33.34))
}
