package portivue

import "fmt"

// ScopeStrategy selects how data is partitioned between tenants. It is a
// deployment-wide choice made at configuration time; stores apply it
// uniformly instead of probing records at runtime.
type ScopeStrategy string

const (
	// ByUser scopes every account, activity and setting to a single user.
	ByUser ScopeStrategy = "user"
	// ByOrg scopes them to an organization shared by several users.
	ByOrg ScopeStrategy = "org"
)

// ParseScopeStrategy parses a string into a ScopeStrategy.
func ParseScopeStrategy(s string) (ScopeStrategy, error) {
	switch t := ScopeStrategy(s); t {
	case ByUser, ByOrg:
		return t, nil
	default:
		return "", fmt.Errorf("unknown scope strategy: %q", s)
	}
}

// Scope identifies one tenant under the configured strategy.
type Scope struct {
	Strategy ScopeStrategy
	TenantID string
}

// UserScope returns a per-user scope.
func UserScope(userID string) Scope { return Scope{Strategy: ByUser, TenantID: userID} }

// OrgScope returns a per-organization scope.
func OrgScope(orgID string) Scope { return Scope{Strategy: ByOrg, TenantID: orgID} }

func (s Scope) String() string { return string(s.Strategy) + ":" + s.TenantID }
