// internal/usuario/model.go
package usuario

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Usuario é um usuário do sistema, vinculado a uma empresa.
type Usuario struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Nome      string `gorm:"size:255;not null" json:"nome"`
	Email     string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	SenhaHash string `gorm:"size:255;not null" json:"-"`
	IsAdmin   bool   `gorm:"not null;default:false" json:"isAdmin"`

	EmpresaID uint `gorm:"not null;index" json:"empresaId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Usuario{})
}

// HashSenha gera um hash bcrypt para a senha informada.
func HashSenha(senha string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	return string(hash), err
}

// VerificarSenha compara hash bcrypt com a senha em texto puro.
func VerificarSenha(hash, senha string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha)) == nil
}
