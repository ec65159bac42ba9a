package models

import (
	"encoding/json"
	"strings"
	"time"
)

// OAuthClient is provisioned externally (seed data) and read-only to the
// rest of the system.
type OAuthClient struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	ClientID     string `gorm:"uniqueIndex;not null"`
	ClientSecret string `gorm:"not null"`
	Name         string `gorm:"not null"`
	RedirectURIs string `gorm:"type:text;not null"` // JSON array of absolute URIs
	Scopes       string `gorm:"not null"`           // space-separated allowed scopes
	CreatedAt    time.Time
}

// TableName overrides the table name used by OAuthClient to `oauth_clients`
func (OAuthClient) TableName() string {
	return "oauth_clients"
}

// RedirectURIList decodes the stored JSON array. A malformed value yields
// an empty list, which fails every redirect check.
func (c *OAuthClient) RedirectURIList() []string {
	var uris []string
	if err := json.Unmarshal([]byte(c.RedirectURIs), &uris); err != nil {
		return nil
	}
	return uris
}

// AllowsRedirectURI reports whether uri exactly matches a registered URI.
// No prefix or wildcard matching.
func (c *OAuthClient) AllowsRedirectURI(uri string) bool {
	if uri == "" {
		return false
	}
	for _, registered := range c.RedirectURIList() {
		if registered == uri {
			return true
		}
	}
	return false
}

// AllowsScopes reports whether every requested scope is in the client's
// allowed set.
func (c *OAuthClient) AllowsScopes(requested string) bool {
	allowed := make(map[string]bool)
	for _, sc := range strings.Fields(c.Scopes) {
		allowed[sc] = true
	}
	for _, sc := range strings.Fields(requested) {
		if !allowed[sc] {
			return false
		}
	}
	return true
}

// EncodeRedirectURIs renders a URI list into the stored JSON form.
func EncodeRedirectURIs(uris []string) string {
	b, _ := json.Marshal(uris)
	return string(b)
}
