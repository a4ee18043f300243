// ABOUTME: Wire types for gyms, organizations, linked users, statistics and plans
// ABOUTME: Mirrors the JSON shapes returned inside backend response envelopes

package principal

// Gym is the identity record of an authenticated gym.
type Gym struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	CNPJ            string `json:"cnpj"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	ResponsibleName string `json:"responsible_name"`
	IsActive        bool   `json:"is_active"`
}

// Organization is the identity record of an authenticated organization.
type Organization struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	CNPJ            string `json:"cnpj"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	ResponsibleName string `json:"responsible_name"`
	IsActive        bool   `json:"is_active"`
}

// Credentials is the login payload shared by both kinds.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterGymData is the POST /gyms/auth/register payload.
type RegisterGymData struct {
	Name            string `json:"name"`
	CNPJ            string `json:"cnpj"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	ResponsibleName string `json:"responsible_name"`
}

// RegisterOrganizationData is the POST /organizations/auth/register payload.
type RegisterOrganizationData struct {
	Name            string `json:"name"`
	CNPJ            string `json:"cnpj"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	ResponsibleName string `json:"responsible_name"`
}

// UserStatus constants for linked users
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusPending  = "pending" // organizations only, awaiting approval
)

// GymUser is a user linked to a gym.
type GymUser struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	LinkedAt string `json:"linked_at"`
}

// OrganizationUser is a user linked to an organization.
type OrganizationUser struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	LinkedAt string `json:"linked_at"`
}

// GymStats summarizes a gym's linked users.
type GymStats struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	InactiveUsers int `json:"inactive_users"`
}

// OrganizationStats summarizes an organization's linked users.
type OrganizationStats struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	InactiveUsers int `json:"inactive_users"`
	PendingUsers  int `json:"pending_users"`
}

// Plan is a subscription plan offered by the platform.
type Plan struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"duration_days"`
	IsActive     bool    `json:"is_active"`
}

// Message is the acknowledgement body some endpoints return.
type Message struct {
	Message string `json:"message"`
}
