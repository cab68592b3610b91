package auth

import "github.com/tradeboard/suggestion-service/internal/config"

// AdminChecker answers whether a user may perform reviewer actions. The
// actor id is always an explicit parameter; there is no ambient "current
// admin" session state.
type AdminChecker interface {
	IsAdmin(userID string) bool
}

// StaticChecker checks membership in a fixed admin list from configuration.
type StaticChecker struct {
	admins map[string]bool
}

// NewStaticChecker builds a checker from the configured admin ids.
func NewStaticChecker(cfg config.AuthConfig) *StaticChecker {
	admins := make(map[string]bool, len(cfg.AdminUserIDs))
	for _, id := range cfg.AdminUserIDs {
		admins[id] = true
	}
	return &StaticChecker{admins: admins}
}

// IsAdmin reports whether userID is in the admin list.
func (c *StaticChecker) IsAdmin(userID string) bool {
	return c.admins[userID]
}
