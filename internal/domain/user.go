package domain

// Identity is an authenticated account as seen by callers of the backend.
type Identity struct {
	ID    string `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
}

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Hash  string `db:"password_hash"`
}

func (u User) Identity() Identity { return Identity{ID: u.ID, Email: u.Email} }

type Profile struct {
	ID       string `json:"id" db:"id"`
	Email    string `json:"email" db:"email"`
	FullName string `json:"full_name" db:"full_name"`
	Phone    string `json:"phone" db:"phone"`
	Role     string `json:"role" db:"role"`
	Status   string `json:"status" db:"status"`
}

// Role is the permission class of an identity.
type Role int

const (
	RoleUnknown Role = iota
	RoleClient
	RoleStaff
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleUnknown: "",
	RoleClient:  "client",
	RoleStaff:   "staff",
	RoleAdmin:   "admin",
	RoleOwner:   "owner",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok && s != "" {
		return s
	}
	return "unknown"
}

// ParseRole maps a stored role string to a Role. Matching is exact, so
// padded or differently cased values are RoleUnknown.
func ParseRole(s string) Role {
	if s == "" {
		return RoleUnknown
	}
	for r, name := range roleNames {
		if name == s {
			return r
		}
	}
	return RoleUnknown
}

// Staff reports whether the role belongs to the shop side.
func (r Role) Staff() bool { return r == RoleStaff || r == RoleAdmin || r == RoleOwner }
