// Файл: internal/entities/user-entity.go
package entities

import (
	"time"

	"inventory-system/pkg/types"
)

type User struct {
	ID       uint64   `json:"id" db:"id"`
	Username string   `json:"username" db:"username"`
	RealName string   `json:"realName" db:"real_name"`
	Email    string   `json:"email" db:"email"`
	Password string   `json:"-" db:"password_hash"`
	Role     UserRole `json:"role" db:"role"`

	LastLogin    *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	Is2FAEnabled bool       `json:"is2FAEnabled" db:"is_2fa_enabled"`
	TwoFASecret  *string    `json:"-" db:"twofa_secret"`
	SSOProvider  *string    `json:"ssoProvider,omitempty" db:"sso_provider"`
	AvatarURL    *string    `json:"avatarUrl,omitempty" db:"avatar_url"`

	types.BaseEntity
}

// DisplayName - имя для журналов истории и аудита.
func (u *User) DisplayName() string {
	if u.RealName != "" {
		return u.RealName
	}
	return u.Username
}

// AdminUsername - встроенный администратор: не удаляется при очистке базы
// и не обязан настраивать 2FA.
const AdminUsername = "admin"
