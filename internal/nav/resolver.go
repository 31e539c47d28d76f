package nav

import (
	"strings"

	"github.com/interviewhub/gateway/internal/authz"
	"github.com/interviewhub/gateway/internal/shared"
)

// UserAction identifies an administrative action on a user account.
type UserAction string

const (
	ActionView          UserAction = "view"
	ActionEdit          UserAction = "edit"
	ActionBan           UserAction = "ban"
	ActionDelete        UserAction = "delete"
	ActionResetPassword UserAction = "reset-password"
	ActionPromote       UserAction = "promote"
	ActionDemote        UserAction = "demote"
)

// roleChanging actions demote, ban or delete an account and fall under the
// self-protection rule.
func (a UserAction) roleChanging() bool {
	switch a {
	case ActionBan, ActionDelete, ActionDemote:
		return true
	default:
		return false
	}
}

func (a UserAction) code() authz.Code {
	switch a {
	case ActionEdit:
		return "system:user:edit:button"
	case ActionBan:
		return "system:user:ban:button"
	case ActionDelete:
		return "system:user:delete:button"
	case ActionResetPassword:
		return "system:user:reset-password:button"
	case ActionPromote, ActionDemote:
		return "system:user:role:button"
	default:
		return ""
	}
}

// Resolver derives the visible navigation surface from the session's
// capability view and permission evaluator. It holds no mutable state.
type Resolver struct {
	entries []Entry
	actions []Action
}

// NewResolver builds a Resolver over the static catalog.
func NewResolver() *Resolver {
	return &Resolver{entries: Catalog(), actions: Actions()}
}

// Entries returns the ordered navigation entries visible to the session.
func (rs *Resolver) Entries(view authz.View, eval authz.Evaluator) []Entry {
	if view.SuperAdmin() {
		return append([]Entry(nil), rs.entries...)
	}

	visible := make([]Entry, 0, len(rs.entries))
	for _, entry := range rs.entries {
		if entry.Public {
			visible = append(visible, entry)
			continue
		}
		// The fixed admin allow-list wins over code-based checks for
		// admin-tier sessions.
		if entry.AdminMenu {
			if view.Admin() {
				visible = append(visible, entry)
			}
			continue
		}
		// Entries without a declared code are open by default.
		if entry.Code == "" {
			visible = append(visible, entry)
			continue
		}
		if eval.Has(entry.Code) || eval.Has(legacyMenuCode(entry.Path)) {
			visible = append(visible, entry)
		}
	}
	return visible
}

// Buttons returns the action keys enabled for the session. Anonymous
// sessions get none.
func (rs *Resolver) Buttons(view authz.View, eval authz.Evaluator) []string {
	if !view.Authenticated() {
		return nil
	}
	enabled := make([]string, 0, len(rs.actions))
	for _, action := range rs.actions {
		if eval.Has(action.Code) || (action.LegacyCode != "" && eval.Has(action.LegacyCode)) {
			enabled = append(enabled, action.Key)
		}
	}
	return enabled
}

// CanActOnUser decides whether the acting session may perform an
// administrative action on the target account. Role comparison takes
// precedence over code-based permission when acting on another
// administrator.
func (rs *Resolver) CanActOnUser(actor shared.Auth, target authz.Role, targetID int64, action UserAction) bool {
	if !actor.IsAuthenticated {
		return false
	}
	actorRole := actor.Role

	// Self-protection: no self demote/ban/delete unless super admin.
	if actor.UserID == targetID && action.roleChanging() && actorRole != authz.RoleSuperAdmin {
		return false
	}

	// An administrator account is only reachable by a strictly higher role,
	// whatever codes the actor holds.
	if target.IsAdmin() && action != ActionView && !actorRole.Outranks(target) {
		return false
	}

	if actorRole == authz.RoleSuperAdmin {
		return true
	}

	code := action.code()
	if code == "" {
		return actorRole.IsAdmin()
	}
	eval := authz.Evaluator{Role: actorRole, Perms: authz.NewSet(actor.Permissions...)}
	return eval.Has(code)
}

// CanEditResource decides edit/delete on an owned resource: the owner may,
// and so may a session holding the administrative code.
func (rs *Resolver) CanEditResource(actor shared.Auth, ownerID int64, adminCode authz.Code) bool {
	if !actor.IsAuthenticated {
		return false
	}
	if actor.UserID == ownerID {
		return true
	}
	eval := authz.Evaluator{Role: actor.Role, Perms: authz.NewSet(actor.Permissions...)}
	return eval.Has(adminCode)
}

// legacyMenuCode derives the dot-dialect menu code from an entry path, e.g.
// "/hot-questions" becomes "menu.hot-questions".
func legacyMenuCode(path string) authz.Code {
	trimmed := strings.TrimPrefix(strings.ReplaceAll(path, "/", "."), ".")
	if trimmed == "" {
		trimmed = "home"
	}
	return authz.Code("menu." + trimmed)
}
