// Package nav computes the navigation entries and action buttons visible to
// the current session.
package nav

import "github.com/interviewhub/gateway/internal/authz"

// Entry is a candidate navigation item from the static catalog.
type Entry struct {
	Path  string     `json:"path"`
	Label string     `json:"label"`
	Code  authz.Code `json:"-"`
	// Public entries are visible to every session, including anonymous ones.
	Public bool `json:"-"`
	// AdminMenu entries belong to the fixed admin allow-list. They are shown
	// to admin-tier sessions without consulting permission codes; explicit
	// role allow-lists take precedence over code-based checks.
	AdminMenu bool `json:"-"`
}

// Action is a candidate action button.
type Action struct {
	Key  string     `json:"key"`
	Code authz.Code `json:"-"`
	// Legacy spelling of the same permission in the dot dialect. Checked in
	// addition to Code because stored grants use both.
	LegacyCode authz.Code `json:"-"`
}

// Catalog returns the fixed entry catalog, mirroring the platform's top
// navigation.
func Catalog() []Entry {
	return []Entry{
		{Path: "/", Label: "Home", Code: "system:menu:home", Public: true},
		{Path: "/hot-questions", Label: "Hot Questions", Code: "system:menu:hot-questions", Public: true},
		{Path: "/categories", Label: "Categories", Code: "system:menu:categories", Public: true},
		{Path: "/latest-questions", Label: "Latest Questions", Code: "system:menu:latest-questions", Public: true},
		{Path: "/question-review", Label: "Question Review", Code: "system:menu:question-review", AdminMenu: true},
		{Path: "/permission-management", Label: "Permission Management", Code: "system:menu:permission-management", AdminMenu: true},
	}
}

// Actions returns the fixed action-button catalog.
func Actions() []Action {
	return []Action{
		{Key: "question.add", Code: "question:add:button", LegacyCode: "button.question.add"},
		{Key: "interview.mock", Code: "interview:mock:button", LegacyCode: "button.interview.mock"},
		{Key: "user.edit", Code: "system:user:edit:button", LegacyCode: "button.user.edit"},
		{Key: "user.ban", Code: "system:user:ban:button", LegacyCode: "button.user.ban"},
		{Key: "user.delete", Code: "system:user:delete:button", LegacyCode: "button.user.delete"},
		{Key: "user.reset-password", Code: "system:user:reset-password:button", LegacyCode: "button.user.reset-password"},
		{Key: "user.role", Code: "system:user:role:button", LegacyCode: "button.user.role"},
	}
}
