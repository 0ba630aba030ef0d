// Package devstore serves 1Password-shaped items from a local YAML file.
//
// It backs developer mode: the same schemas and vault/item names work
// against a checked-in fixture instead of a live 1Password account. The file
// format mirrors the item model:
//
//	vaults:
//	  - title: Prod
//	    items:
//	      - title: api
//	        fields:
//	          - {title: name, value: api}
//	        sections:
//	          - title: Config
//	            fields:
//	              - {title: debug, value: "yes"}
//	references:
//	  op://Prod/db/password: hunter2
//
// Secret references resolve from the references map first and otherwise by
// walking op://<vault>/<item>[/<section>]/<field> through the stored items.
package devstore

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	cfgerrors "github.com/utiligize/configator/internal/errors"
	"github.com/utiligize/configator/pkg/onepassword"
)

// File is the on-disk layout of a dev store.
type File struct {
	Vaults     []VaultDef        `yaml:"vaults"`
	References map[string]string `yaml:"references,omitempty"`
}

// VaultDef is a vault in the dev store file.
type VaultDef struct {
	ID    string    `yaml:"id,omitempty"`
	Title string    `yaml:"title"`
	Items []ItemDef `yaml:"items"`
}

// ItemDef is an item in the dev store file. Top-level fields have no section.
type ItemDef struct {
	ID       string       `yaml:"id,omitempty"`
	Title    string       `yaml:"title"`
	Fields   []FieldDef   `yaml:"fields,omitempty"`
	Sections []SectionDef `yaml:"sections,omitempty"`
}

// SectionDef groups fields under a section title.
type SectionDef struct {
	ID     string     `yaml:"id,omitempty"`
	Title  string     `yaml:"title"`
	Fields []FieldDef `yaml:"fields,omitempty"`
}

// FieldDef is a single labelled value.
type FieldDef struct {
	ID    string `yaml:"id,omitempty"`
	Title string `yaml:"title"`
	Value string `yaml:"value"`
}

// Store is an in-memory onepassword.Client built from a File.
type Store struct {
	mu         sync.RWMutex
	vaults     []onepassword.Vault
	items      map[string][]onepassword.Item // vault ID -> items
	references map[string]string
	envPrefix  string
	env        []string
}

// Option configures a Store.
type Option func(*Store)

// WithEnvOverlay exposes environment variables (KEY=value) named prefix+FIELD
// as top-level fields titled FIELD. The prefix matches case-insensitively;
// variables without it and empty values are ignored. Overlay fields are
// listed before the stored fields, so they take precedence over stored
// values. An empty prefix exposes every variable.
func WithEnvOverlay(prefix string, environ []string) Option {
	return func(s *Store) {
		s.envPrefix = prefix
		s.env = append([]string(nil), environ...)
	}
}

// Load reads a dev store from a YAML file.
func Load(path string, opts ...Option) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cfgerrors.ConfigError{
				Field:      "dev_store",
				Value:      path,
				Message:    "developer store file not found",
				Suggestion: "Point CONFIGATOR_DEV_STORE at a YAML file with a top-level 'vaults' list",
			}
		}
		return nil, cfgerrors.UserError{
			Message:    "Failed to read developer store",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}
	return Parse(data, opts...)
}

// Parse builds a Store from YAML bytes.
func Parse(data []byte, opts ...Option) (*Store, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, cfgerrors.ConfigError{
			Field:      "dev_store",
			Message:    "invalid YAML syntax in developer store",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}
	return New(file, opts...), nil
}

// New builds a Store from an already decoded File. Missing IDs are generated
// from the position of the vault, item, section or field.
func New(file File, opts ...Option) *Store {
	s := &Store{
		items:      make(map[string][]onepassword.Item),
		references: make(map[string]string, len(file.References)),
	}
	for ref, value := range file.References {
		s.references[ref] = value
	}

	for vi, vd := range file.Vaults {
		vaultID := orDefault(vd.ID, fmt.Sprintf("dev-vault-%d", vi+1))
		s.vaults = append(s.vaults, onepassword.Vault{ID: vaultID, Title: vd.Title})

		for ii, id := range vd.Items {
			item := onepassword.Item{
				ID:      orDefault(id.ID, fmt.Sprintf("%s-item-%d", vaultID, ii+1)),
				Title:   id.Title,
				VaultID: vaultID,
			}
			for fi, fd := range id.Fields {
				item.Fields = append(item.Fields, toField(fd, fmt.Sprintf("%s-field-%d", item.ID, fi+1), ""))
			}
			for si, sd := range id.Sections {
				sectionID := orDefault(sd.ID, fmt.Sprintf("%s-section-%d", item.ID, si+1))
				item.Sections = append(item.Sections, onepassword.Section{ID: sectionID, Title: sd.Title})
				for fi, fd := range sd.Fields {
					item.Fields = append(item.Fields, toField(fd, fmt.Sprintf("%s-field-%d", sectionID, fi+1), sectionID))
				}
			}
			s.items[vaultID] = append(s.items[vaultID], item)
		}
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func toField(fd FieldDef, fallbackID, sectionID string) onepassword.Field {
	return onepassword.Field{
		ID:        orDefault(fd.ID, fallbackID),
		Title:     fd.Title,
		Value:     fd.Value,
		SectionID: sectionID,
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func (s *Store) ListVaults(ctx context.Context) ([]onepassword.Vault, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]onepassword.Vault(nil), s.vaults...), nil
}

func (s *Store) ListItems(ctx context.Context, vaultID string) ([]onepassword.ItemOverview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasVault(vaultID) {
		return nil, fmt.Errorf("vault %q: %w", vaultID, onepassword.ErrNotFound)
	}
	overviews := make([]onepassword.ItemOverview, 0, len(s.items[vaultID]))
	for _, item := range s.items[vaultID] {
		overviews = append(overviews, item.Overview())
	}
	return overviews, nil
}

func (s *Store) GetItem(ctx context.Context, vaultID, itemID string) (onepassword.Item, error) {
	if err := ctx.Err(); err != nil {
		return onepassword.Item{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items[vaultID] {
		if item.ID == itemID {
			return s.withEnv(item), nil
		}
	}
	return onepassword.Item{}, fmt.Errorf("item %q in vault %q: %w", itemID, vaultID, onepassword.ErrNotFound)
}

func (s *Store) ResolveReference(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if value, ok := s.references[ref]; ok {
		return value, nil
	}

	value, err := s.walk(ref)
	if err != nil {
		return "", fmt.Errorf("reference %q: %w", ref, err)
	}
	return value, nil
}

func (s *Store) hasVault(vaultID string) bool {
	for _, v := range s.vaults {
		if v.ID == vaultID {
			return true
		}
	}
	return false
}

// withEnv returns a copy of item with the environment overlay prepended.
func (s *Store) withEnv(item onepassword.Item) onepassword.Item {
	fields := make([]onepassword.Field, 0, len(s.env)+len(item.Fields))
	for _, kv := range s.env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" || len(key) <= len(s.envPrefix) {
			continue
		}
		if !strings.EqualFold(key[:len(s.envPrefix)], s.envPrefix) {
			continue
		}
		title := key[len(s.envPrefix):]
		fields = append(fields, onepassword.Field{ID: "env-" + key, Title: title, Value: value})
	}
	item.Fields = append(fields, item.Fields...)
	item.Sections = append([]onepassword.Section(nil), item.Sections...)
	return item
}

// walk resolves op://<vault>/<item>[/<section>]/<field>. Each segment
// matches a title (case-insensitively) or an ID.
func (s *Store) walk(ref string) (string, error) {
	path, ok := strings.CutPrefix(ref, "op://")
	if !ok {
		return "", fmt.Errorf("not an op:// reference")
	}
	parts := strings.Split(path, "/")
	if len(parts) < 3 || len(parts) > 4 {
		return "", fmt.Errorf("expected op://vault/item/[section/]field")
	}

	var vaultID string
	for _, v := range s.vaults {
		if matches(v.ID, v.Title, parts[0]) {
			vaultID = v.ID
			break
		}
	}
	if vaultID == "" {
		return "", fmt.Errorf("vault %q: %w", parts[0], onepassword.ErrNotFound)
	}

	for _, item := range s.items[vaultID] {
		if !matches(item.ID, item.Title, parts[1]) {
			continue
		}
		inScope := func(onepassword.Field) bool { return true }
		if len(parts) == 4 {
			sectionID, found := "", false
			for _, sec := range item.Sections {
				if matches(sec.ID, sec.Title, parts[2]) {
					sectionID, found = sec.ID, true
					break
				}
			}
			if !found {
				return "", fmt.Errorf("section %q: %w", parts[2], onepassword.ErrNotFound)
			}
			inScope = func(f onepassword.Field) bool { return f.SectionID == sectionID }
		}
		fieldName := parts[len(parts)-1]
		for _, f := range item.Fields {
			if inScope(f) && matches(f.ID, f.Title, fieldName) {
				return f.Value, nil
			}
		}
		return "", fmt.Errorf("field %q: %w", fieldName, onepassword.ErrNotFound)
	}
	return "", fmt.Errorf("item %q: %w", parts[1], onepassword.ErrNotFound)
}

func matches(id, title, segment string) bool {
	return id == segment || strings.EqualFold(title, segment)
}

// Ensure Store implements onepassword.Client
var _ onepassword.Client = (*Store)(nil)
