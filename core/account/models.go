package account

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/skillspear/skillspear/core"
)

// Role is the privilege tier of an Account. The set is closed; every
// authorization check matches on it exhaustively.
type Role string

const (
	RoleNone    Role = "none"
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

var AllRoles = []Role{RoleNone, RoleStudent, RoleTeacher, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleNone, RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"` // unique, immutable
	Name      string    `json:"name"`
	Photo     string    `json:"photo,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (a Account) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Account) IsTeacher() bool { return a.Role == RoleTeacher }
func (a Account) IsStudent() bool { return a.Role == RoleStudent }

// NewAccount contains information needed to register a new Account.
type NewAccount struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
	Photo string `json:"photo"`
}

func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Name = core.CleanString(na.Name)
	na.Photo = core.CleanString(na.Photo)
	return validate.Struct(na)
}

// RegisterResult is the outcome of a registration request. Registration
// is idempotent: re-registering an existing email yields the existing
// Account and an informational message instead of an error.
type RegisterResult struct {
	Account Account `json:"account"`
	Created bool    `json:"created"`
	Message string  `json:"message,omitempty"`
}
