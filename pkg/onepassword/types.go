package onepassword

import "context"

// Client is the minimum surface of a secret store needed to load configuration.
type Client interface {
	// ListVaults returns every vault visible to the credential.
	ListVaults(ctx context.Context) ([]Vault, error)

	// ListItems returns overviews of the items stored in a vault.
	ListItems(ctx context.Context, vaultID string) ([]ItemOverview, error)

	// GetItem returns the full item including field values and sections.
	GetItem(ctx context.Context, vaultID, itemID string) (Item, error)

	// ResolveReference returns the value an op:// reference points to.
	ResolveReference(ctx context.Context, ref string) (string, error)
}

// Vault is a vault overview.
type Vault struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// ItemOverview identifies an item without its field values.
type ItemOverview struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	VaultID string `json:"vault_id" yaml:"vault_id"`
}

// Item is a full secret-store record. It is treated as immutable once fetched.
type Item struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	VaultID  string    `json:"vault_id" yaml:"vault_id"`
	Fields   []Field   `json:"fields" yaml:"fields"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Field is a single labelled value inside an item.
type Field struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Value string `json:"value" yaml:"value"`
	// SectionID scopes the field to a section. Empty means top level.
	SectionID string `json:"section_id,omitempty" yaml:"section,omitempty"`
}

// Section is a named group of fields inside an item. Titles may be empty.
type Section struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Overview returns the item's overview.
func (i Item) Overview() ItemOverview {
	return ItemOverview{ID: i.ID, Title: i.Title, VaultID: i.VaultID}
}
