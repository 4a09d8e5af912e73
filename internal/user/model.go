package user

import (
	"time"

	"boutique-be/internal/auth"
)

type User struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      auth.Role `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type CreateUserParams struct {
	Name     string
	Email    string
	Password string
	Role     auth.Role
	Phone    string
}
