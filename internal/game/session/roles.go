package session

import (
	"fmt"
	"sort"
)

// roles maps the names accepted by the account tool to privilege sets.
var roles = map[string]Privileges{
	"pending":    Normal | Pending,
	"restricted": Normal,
	"player":     Normal | Verified,
	"supporter":  Normal | Verified | Supporter,
	"staff":      Normal | Verified | BAT | Moderator,
	"admin":      Normal | Verified | BAT | Moderator | Admin,
	"developer":  Normal | Verified | BAT | Moderator | Admin | Developer,
	"banned":     Normal | Banned,
}

// RoleNames returns every role name in ascending order.
func RoleNames() []string {
	names := make([]string, 0, len(roles))
	for name := range roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseRole returns the privilege set for a role name.
//
// Postcondition: Returns an error naming the valid roles when role is unknown.
func ParseRole(role string) (Privileges, error) {
	priv, ok := roles[role]
	if !ok {
		return 0, fmt.Errorf("unknown role %q: must be one of %v", role, RoleNames())
	}
	return priv, nil
}
