package models

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Status is embedded in the user document, id plus display name.
type Status struct {
	ID   int    `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

var (
	StatusActive   = Status{ID: 1, Name: "Activo"}
	StatusInactive = Status{ID: 2, Name: "Inactivo"}
	StatusLocked   = Status{ID: 3, Name: "Bloqueado"}
	StatusDeleted  = Status{ID: 4, Name: "Eliminado"}
	StatusPending  = Status{ID: 5, Name: "Pendiente de activación"}
)

// Security holds the per-user lockout state mutated on every login attempt.
type Security struct {
	LoginAttempts int        `bson:"loginAttempts" json:"loginAttempts"`
	LockedUntil   *time.Time `bson:"lockedUntil" json:"lockedUntil"`
	LastLoginAt   *time.Time `bson:"lastLoginAt" json:"lastLoginAt"`
	Roles         []string   `bson:"roles" json:"roles"`
}

type User struct {
	ID          int64  `bson:"_id" json:"id"`
	FirstName   string `bson:"firstName" json:"firstName"`
	LastName    string `bson:"lastName" json:"lastName"`
	Email       string `bson:"email" json:"email"`
	PhoneNumber string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Username    string `bson:"username" json:"username"`
	Password    string `bson:"password" json:"-"`

	// Security may be nil on legacy documents; the login flow initializes
	// defaults before touching it.
	Security *Security `bson:"security" json:"security"`

	Status Status `bson:"status" json:"status"`

	// PreviousStatus keeps the status held before a temporary lock so a
	// successful login can restore it.
	PreviousStatus *Status `bson:"previousStatus,omitempty" json:"previousStatus,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// EnsureSecurity initializes the security block on documents that predate it.
func (u *User) EnsureSecurity() {
	if u.Security == nil {
		u.Security = &Security{Roles: []string{}}
	}
}
