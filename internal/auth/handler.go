package auth

import (
	"encoding/json"
	"net/http"

	"github.com/gestaolivre/api-financeiro/internal/usuario"
)

// Handler expõe o login.
type Handler struct {
	Usuarios *usuario.Repository
}

// NewHandler instancia o handler de autenticação.
func NewHandler(usuarios *usuario.Repository) *Handler {
	return &Handler{Usuarios: usuarios}
}

// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	u, err := h.Usuarios.FindByEmail(payload.Email)
	if err != nil || !usuario.VerificarSenha(u.SenhaHash, payload.Senha) {
		http.Error(w, "Credenciais inválidas", http.StatusUnauthorized)
		return
	}

	token, err := GenerateAccessToken(u.ID, u.EmpresaID, u.IsAdmin)
	if err != nil {
		http.Error(w, "Erro ao gerar token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"token":   token,
		"usuario": u,
	})
}
