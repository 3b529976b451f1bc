package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	CtxUserID    ctxKey = "usuarioID"
	CtxEmpresaID ctxKey = "empresaID"
	CtxIsAdmin   ctxKey = "isAdmin"
)

// MiddlewareAutenticacao exige Bearer token válido e injeta usuário e empresa
// no contexto da requisição.
func MiddlewareAutenticacao(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "Token ausente", http.StatusUnauthorized)
			return
		}
		raw := strings.TrimPrefix(h, "Bearer ")
		claims, err := ParseAndValidate(raw)
		if err != nil {
			http.Error(w, "Token inválido", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
		ctx = context.WithValue(ctx, CtxEmpresaID, claims.EmpresaID)
		ctx = context.WithValue(ctx, CtxIsAdmin, claims.IsAdmin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UsuarioDoContexto devolve o id do usuário autenticado (0 se ausente).
func UsuarioDoContexto(ctx context.Context) uint {
	id, _ := ctx.Value(CtxUserID).(uint)
	return id
}

// EmpresaDoContexto devolve o id da empresa (tenant) da requisição.
func EmpresaDoContexto(ctx context.Context) uint {
	id, _ := ctx.Value(CtxEmpresaID).(uint)
	return id
}
