package domain

import "time"

// AffiliateIDPrefix is prepended to the random token of every affiliate id.
const AffiliateIDPrefix = "aff"

// Affiliate represents a partner community listed in the catalog
type Affiliate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	DiscordURL  string    `json:"discordUrl"`
	RobloxURL   string    `json:"robloxUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a Affiliate) Key() string         { return a.ID }
func (a Affiliate) Created() time.Time { return a.CreatedAt }

// AffiliateInput is the payload accepted for affiliate creation and partial updates.
type AffiliateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	DiscordURL  *string `json:"discordUrl,omitempty"`
	RobloxURL   *string `json:"robloxUrl,omitempty"`
}

// AffiliateChanges holds validated, normalized affiliate fields.
type AffiliateChanges struct {
	Name        *string
	Description *string
	Image       *string
	DiscordURL  *string
	RobloxURL   *string
}

// ApplyTo merges the present fields over a. ID and CreatedAt are never touched.
func (c AffiliateChanges) ApplyTo(a *Affiliate) {
	if c.Name != nil {
		a.Name = *c.Name
	}
	if c.Description != nil {
		a.Description = *c.Description
	}
	if c.Image != nil {
		a.Image = *c.Image
	}
	if c.DiscordURL != nil {
		a.DiscordURL = *c.DiscordURL
	}
	if c.RobloxURL != nil {
		a.RobloxURL = *c.RobloxURL
	}
}
