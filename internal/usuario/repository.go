// internal/usuario/repository.go
package usuario

import (
	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de usuários.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancia um novo repositório.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// FindByEmail busca um usuário pelo e-mail.
func (r *Repository) FindByEmail(email string) (*Usuario, error) {
	var u Usuario
	if err := r.DB.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
