// internal/parcelamento/grupolock.go
package parcelamento

import (
	"sync"
)

type trava struct {
	sync.Mutex
	usos int
}

// grupoLock serializa mutações por grupo de parcelamento. Duas edições
// concorrentes do mesmo grupo intercalariam leitura-modificação-escrita sobre
// a macro e quebrariam o invariante da soma; grupos distintos não se bloqueiam.
// Entradas sem goroutine esperando são removidas no Unlock, o mapa não cresce
// com grupos já encerrados.
type grupoLock struct {
	mu    sync.Mutex
	porID map[string]*trava
}

// Lock bloqueia o grupo até o Unlock correspondente.
func (g *grupoLock) Lock(grupoID string) {
	g.mu.Lock()
	if g.porID == nil {
		g.porID = make(map[string]*trava)
	}
	t, ok := g.porID[grupoID]
	if !ok {
		t = &trava{}
		g.porID[grupoID] = t
	}
	t.usos++
	g.mu.Unlock()
	t.Lock()
}

// Unlock libera o grupo e descarta a entrada quando ninguém mais espera.
func (g *grupoLock) Unlock(grupoID string) {
	g.mu.Lock()
	t := g.porID[grupoID]
	t.usos--
	if t.usos == 0 {
		delete(g.porID, grupoID)
	}
	g.mu.Unlock()
	t.Unlock()
}
