package models

import "time"

// Credentials for the remote catalog's integration (client credentials grant).
type Credentials struct {
	ShopURL      string    `json:"url"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Masked returns a copy safe to show: only the last four secret characters remain.
func (c Credentials) Masked() Credentials {
	out := c
	s := c.ClientSecret
	if len(s) <= 4 {
		out.ClientSecret = "****"
		return out
	}
	out.ClientSecret = "****" + s[len(s)-4:]
	return out
}
