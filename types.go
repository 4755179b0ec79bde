package authcore

import "context"

// Role is the coarse authorization level embedded in tokens. It is fixed
// at mint time and revalidated only through re-authentication or a
// revoke-all; a promotion does not retroactively upgrade live tokens.
type Role string

const (
	RoleUser         Role = "user"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleProfessional, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated identity derived from a valid token.
type Principal struct {
	SubjectID string
	Role      Role
}

// TokenPair is the result of issuance: a short-lived access token and a
// long-lived, single-use refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserRecord is the account snapshot the manager needs at login time.
// The stored role is what gets embedded in the minted tokens, never a
// role supplied by the client.
type UserRecord struct {
	UserID       string
	Identifier   string
	PasswordHash string
	Role         Role
}

// UserProvider is the interface callers implement to connect the manager
// to their user database. Return [ErrInvalidCredentials] for unknown
// identifiers; the manager will not distinguish that from a wrong
// password in what it reports to the client.
type UserProvider interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
}
