package domain

import "time"

const (
	AuthorityCustomer = "CUSTOMER"
	AuthoritySeller   = "SELLER"
	AuthorityAdmin    = "ADMIN"
)

// MaxFailedAttempts is the number of consecutive bad passwords that locks an
// account. The counter resets on any successful login and never decays on its
// own; unlocking happens through the password-reset flow or an admin action.
const MaxFailedAttempts = 3

// Account models an authenticated actor in the system. Customer and seller
// profiles live in their own stores; the identity core only touches these
// base fields.
type Account struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Authorities       []string   `json:"authorities"`
	Active            bool       `json:"active"`
	Locked            bool       `json:"locked"`
	Deleted           bool       `json:"-"`
	FailedAttempts    int        `json:"-"`
	PasswordChangedAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// HasAuthority reports whether the account carries the given authority.
func (a *Account) HasAuthority(authority string) bool {
	for _, auth := range a.Authorities {
		if auth == authority {
			return true
		}
	}
	return false
}
