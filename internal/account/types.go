package account

import "time"

// Roles assignable to accounts. Every registered agency gets RoleAgency;
// RoleStaff is reserved for back-office operators who confirm appointments.
const (
	RoleAgency = "agency"
	RoleStaff  = "staff"
)

// Account represents a real-estate agency (or staff) login able to book
// appointments. Billing identifiers follow the Italian fiscal conventions the
// agencies operate under.
type Account struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	AgencyName    string    `json:"agency_name"`
	AgencyAddress string    `json:"agency_address"`
	PartitaIVA    string    `json:"partita_iva"`
	SedeLegale    string    `json:"sede_legale"`
	CodiceUnivoco string    `json:"codice_univoco"`
	Roles         []string  `json:"roles"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Registration carries the profile submitted by a new agency. The caller must
// log in separately afterwards; registering never creates a session.
type Registration struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	AgencyName    string `json:"agency_name"`
	AgencyAddress string `json:"agency_address"`
	PartitaIVA    string `json:"partita_iva"`
	SedeLegale    string `json:"sede_legale"`
	CodiceUnivoco string `json:"codice_univoco"`
	Username      string `json:"username"`
	Password      string `json:"password"`
}

// HasRole reports whether the account carries the given role.
func (a *Account) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}
