package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/utiligize/configator/pkg/onepassword"
)

// FakeOnePassword is an in-memory onepassword.Client.
//
// Vaults are identified by "vault-<n>" in insertion order. Every method call
// is recorded so tests can assert which remote operations happened.
type FakeOnePassword struct {
	mu sync.Mutex

	vaults     []onepassword.Vault
	items      map[string][]onepassword.Item // vault ID -> items
	references map[string]string
	failOn     map[string]error // method name -> error

	calls []string
}

// NewFakeOnePassword creates an empty fake store.
func NewFakeOnePassword() *FakeOnePassword {
	return &FakeOnePassword{
		items:      make(map[string][]onepassword.Item),
		references: make(map[string]string),
		failOn:     make(map[string]error),
	}
}

// WithVault adds an empty vault and returns the fake for chaining.
func (f *FakeOnePassword) WithVault(title string) *FakeOnePassword {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vaultID(title)
	return f
}

// WithItem stores item in the vault with the given title, creating the vault
// if needed. The item's VaultID is filled in.
func (f *FakeOnePassword) WithItem(vaultTitle string, item onepassword.Item) *FakeOnePassword {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.vaultID(vaultTitle)
	item.VaultID = id
	f.items[id] = append(f.items[id], item)
	return f
}

// WithReference makes ResolveReference(ref) return value.
func (f *FakeOnePassword) WithReference(ref, value string) *FakeOnePassword {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.references[ref] = value
	return f
}

// WithError makes the named method ("ListVaults", "ListItems", "GetItem",
// "ResolveReference") fail with err.
func (f *FakeOnePassword) WithError(method string, err error) *FakeOnePassword {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn[method] = err
	return f
}

func (f *FakeOnePassword) vaultID(title string) string {
	for _, v := range f.vaults {
		if v.Title == title {
			return v.ID
		}
	}
	id := fmt.Sprintf("vault-%d", len(f.vaults)+1)
	f.vaults = append(f.vaults, onepassword.Vault{ID: id, Title: title})
	return id
}

func (f *FakeOnePassword) record(ctx context.Context, method string) error {
	f.calls = append(f.calls, method)
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.failOn[method]
}

func (f *FakeOnePassword) ListVaults(ctx context.Context) ([]onepassword.Vault, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "ListVaults"); err != nil {
		return nil, err
	}
	return append([]onepassword.Vault(nil), f.vaults...), nil
}

func (f *FakeOnePassword) ListItems(ctx context.Context, vaultID string) ([]onepassword.ItemOverview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "ListItems"); err != nil {
		return nil, err
	}
	overviews := make([]onepassword.ItemOverview, 0, len(f.items[vaultID]))
	for _, item := range f.items[vaultID] {
		overviews = append(overviews, item.Overview())
	}
	return overviews, nil
}

func (f *FakeOnePassword) GetItem(ctx context.Context, vaultID, itemID string) (onepassword.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "GetItem"); err != nil {
		return onepassword.Item{}, err
	}
	for _, item := range f.items[vaultID] {
		if item.ID == itemID {
			return item, nil
		}
	}
	return onepassword.Item{}, fmt.Errorf("item %q in vault %q: %w", itemID, vaultID, onepassword.ErrNotFound)
}

func (f *FakeOnePassword) ResolveReference(ctx context.Context, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "ResolveReference"); err != nil {
		return "", err
	}
	value, ok := f.references[ref]
	if !ok {
		return "", fmt.Errorf("reference %q: %w", ref, onepassword.ErrNotFound)
	}
	return value, nil
}

// Calls returns the recorded method names in call order.
func (f *FakeOnePassword) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times method was called.
func (f *FakeOnePassword) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

// Ensure FakeOnePassword implements onepassword.Client
var _ onepassword.Client = (*FakeOnePassword)(nil)
