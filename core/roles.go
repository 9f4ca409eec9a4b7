package core

// Role is a closed enumeration of the access levels a principal can hold.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a requested role name onto the closed vocabulary.
// Any value outside it falls back to RoleUser.
func ParseRole(name string) Role {
	switch name {
	case string(RoleModerator):
		return RoleModerator
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleUser
	}
}

// ResolveRoles converts requested role names into a deduplicated role set.
// A nil or empty request yields exactly [RoleUser], so a principal's role set
// is never empty.
func ResolveRoles(names []string) []Role {
	if len(names) == 0 {
		return []Role{RoleUser}
	}
	seen := map[Role]struct{}{}
	out := make([]Role, 0, len(names))
	for _, n := range names {
		r := ParseRole(n)
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func roleStrings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func rolesFromStrings(names []string) []Role {
	out := make([]Role, 0, len(names))
	for _, n := range names {
		out = append(out, Role(n))
	}
	return out
}
