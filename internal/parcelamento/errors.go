// internal/parcelamento/errors.go
package parcelamento

import (
	"errors"
	"fmt"
)

// ErrGrupoNaoEncontrado indica que nem macro nem parcelas existem para o
// identificador informado.
var ErrGrupoNaoEncontrado = errors.New("grupo de parcelamento não encontrado")

// ErrReducaoInvalida rejeita uma redução de quantidade que exigiria remover
// parcelas já pagas. A edição inteira é recusada, sem mutação parcial.
type ErrReducaoInvalida struct {
	Pagas     int
	Pendentes int
	Remover   int
}

func (e *ErrReducaoInvalida) Error() string {
	return fmt.Sprintf(
		"não é possível remover %d parcela(s): apenas %d pendente(s) disponíveis, %d já paga(s) bloqueiam a redução",
		e.Remover, e.Pendentes, e.Pagas)
}
