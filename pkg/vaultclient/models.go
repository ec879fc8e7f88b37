// Package vaultclient is an HTTP client for a Bitwarden-compatible vault
// (Vaultwarden): prelogin, OAuth2 password-grant login, item sync and
// CRUD, collections, and folders.
package vaultclient

// KdfInfo is the response of POST /api/accounts/prelogin.
type KdfInfo struct {
	Kdf            int  `json:"kdf"`
	KdfIterations  int  `json:"kdfIterations"`
	KdfMemory      *int `json:"kdfMemory,omitempty"`
	KdfParallelism *int `json:"kdfParallelism,omitempty"`
}

// SyncData is the response of GET /api/sync.
type SyncData struct {
	Profile Profile    `json:"profile"`
	Folders []FolderData `json:"folders"`
	Ciphers []Cipher   `json:"ciphers"`
}

// Cipher is a vault item as returned by sync; callers needing the full
// item body for mutation use GetItem, which returns the raw JSON object.
type Cipher struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Organization is a membership entry on the account profile.
type Organization struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Key  *string `json:"key"`
}

// Profile is the account's profile block within SyncData.
type Profile struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	Key           string         `json:"key"`
	PrivateKey    *string        `json:"privateKey"`
	Organizations []Organization `json:"organizations"`
}

// Collection is an organization collection.
type Collection struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organizationId"`
	Name           string  `json:"name"`
	ExternalID     *string `json:"externalId"`
}

// FolderData is a personal folder as returned by sync/list.
type FolderData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Member is an organization member.
type Member struct {
	ID         string  `json:"id"`
	UserID     *string `json:"userId"`
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Status     int     `json:"status"`
	MemberType int     `json:"type"`
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}
