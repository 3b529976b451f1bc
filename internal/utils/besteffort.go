// internal/utils/besteffort.go
package utils

import (
	"github.com/sirupsen/logrus"
)

// BestEffort executa um efeito colateral não-crítico (histórico, recálculo de
// fatura, recálculo de pró-labore). Qualquer erro vira log estruturado e nunca
// se propaga: a falha de um efeito desses não pode abortar a mutação principal.
func BestEffort(logger *logrus.Logger, nome string, campos logrus.Fields, fn func() error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithFields(campos).WithField("panic", rec).
				Errorf("efeito não-crítico %q entrou em pânico", nome)
		}
	}()
	if err := fn(); err != nil {
		logger.WithFields(campos).WithError(err).
			Warnf("efeito não-crítico %q falhou, seguindo em frente", nome)
	}
}
