// ABOUTME: Principal kind descriptors for the gym and organization backends
// ABOUTME: Holds endpoint prefixes, session field names, storage keys and fallback messages

package principal

import "path"

// Kind describes one principal kind served by the backend.
type Kind struct {
	// Name is the singular name, also used as the JSON field of the principal
	// inside a session payload ("gym", "organization").
	Name string

	// Prefix is the REST collection prefix ("gyms", "organizations").
	Prefix string

	// TokenKey is the well-known storage key for the bearer token.
	TokenKey string

	// RegisterFailed and LoginFailed are the localized messages used when the
	// backend rejects a request without a message of its own.
	RegisterFailed string
	LoginFailed    string
	ProfileFailed  string
}

// Localized fallback messages shared by both kinds.
const (
	MessageRegisterFailed = "Cadastro falhou"
	MessageLoginFailed    = "Login falhou"
	MessageProfileFailed  = "Falha ao carregar perfil"
)

var (
	// GymKind describes the /gyms backend.
	GymKind = Kind{
		Name:           "gym",
		Prefix:         "gyms",
		TokenKey:       "gym_access_token",
		RegisterFailed: MessageRegisterFailed,
		LoginFailed:    MessageLoginFailed,
		ProfileFailed:  MessageProfileFailed,
	}

	// OrganizationKind describes the /organizations backend.
	OrganizationKind = Kind{
		Name:           "organization",
		Prefix:         "organizations",
		TokenKey:       "organization_access_token",
		RegisterFailed: MessageRegisterFailed,
		LoginFailed:    MessageLoginFailed,
		ProfileFailed:  MessageProfileFailed,
	}
)

// Path joins elem onto the kind's prefix, returning an absolute API path.
//
//	GymKind.Path("auth", "login") == "/gyms/auth/login"
func (k Kind) Path(elem ...string) string {
	return "/" + path.Join(append([]string{k.Prefix}, elem...)...)
}

// Kinds returns every known kind.
func Kinds() []Kind {
	return []Kind{GymKind, OrganizationKind}
}

// ParseKind resolves a kind from its singular or plural name.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if name == k.Name || name == k.Prefix {
			return k, true
		}
	}
	// "org" is accepted as shorthand on the command line
	if name == "org" {
		return OrganizationKind, true
	}
	return Kind{}, false
}
