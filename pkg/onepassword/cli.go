package onepassword

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cfgerrors "github.com/utiligize/configator/internal/errors"
	"github.com/utiligize/configator/internal/logging"
	"github.com/utiligize/configator/internal/secure"
	"github.com/utiligize/configator/pkg/exec"
)

const (
	// TokenEnv is the environment variable the op CLI reads a service-account token from.
	TokenEnv = "OP_SERVICE_ACCOUNT_TOKEN"

	defaultMaxRetries = 2
	defaultRetryDelay = 250 * time.Millisecond
)

// CLIClient implements Client by invoking the 1Password CLI (`op`).
type CLIClient struct {
	Account    string
	MaxRetries int
	RetryDelay time.Duration

	credential *secure.Credential
	executor   exec.CommandExecutor
}

// CLIOption configures a CLIClient.
type CLIOption func(*CLIClient)

// WithAccount selects the account passed to every command with --account.
func WithAccount(account string) CLIOption {
	return func(c *CLIClient) { c.Account = account }
}

// WithExecutor replaces the command executor. The credential is not injected
// into custom executors.
func WithExecutor(executor exec.CommandExecutor) CLIOption {
	return func(c *CLIClient) { c.executor = executor }
}

// WithRetries sets how many times a transient failure is retried and the base
// delay between attempts. The delay grows linearly with the attempt number.
func WithRetries(maxRetries int, delay time.Duration) CLIOption {
	return func(c *CLIClient) {
		c.MaxRetries = maxRetries
		c.RetryDelay = delay
	}
}

// NewCLIClient creates a client that authenticates with the given
// service-account token. An empty or nil credential relies on an existing
// `op signin` session. The token stays sealed until a command runs.
func NewCLIClient(credential *secure.Credential, opts ...CLIOption) *CLIClient {
	c := &CLIClient{
		MaxRetries: defaultMaxRetries,
		RetryDelay: defaultRetryDelay,
		credential: credential,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// commandExecutor returns the executor for one command and the revealed
// token. Injected executors never receive the token in their environment.
func (c *CLIClient) commandExecutor() (exec.CommandExecutor, string, error) {
	token, err := c.credential.Reveal()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read service account token: %w", err)
	}
	switch {
	case c.executor != nil:
		return c.executor, token, nil
	case token == "":
		return exec.DefaultExecutor(), "", nil
	}
	return exec.WithEnv(TokenEnv + "=" + token), token, nil
}

// ListVaults runs `op vault list`.
func (c *CLIClient) ListVaults(ctx context.Context) ([]Vault, error) {
	out, err := c.run(ctx, "vault list", "vault", "list", "--format", "json")
	if err != nil {
		return nil, err
	}

	var raw []cliVault
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse vault list: %w", err)
	}

	vaults := make([]Vault, 0, len(raw))
	for _, v := range raw {
		vaults = append(vaults, Vault{ID: v.ID, Title: v.Name})
	}
	return vaults, nil
}

// ListItems runs `op item list` for one vault.
func (c *CLIClient) ListItems(ctx context.Context, vaultID string) ([]ItemOverview, error) {
	out, err := c.run(ctx, "item list", "item", "list", "--vault", vaultID, "--format", "json")
	if err != nil {
		return nil, err
	}

	var raw []cliItemOverview
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse item list: %w", err)
	}

	items := make([]ItemOverview, 0, len(raw))
	for _, it := range raw {
		vid := it.Vault.ID
		if vid == "" {
			vid = vaultID
		}
		items = append(items, ItemOverview{ID: it.ID, Title: it.Title, VaultID: vid})
	}
	return items, nil
}

// GetItem runs `op item get` and converts the item's fields and sections.
func (c *CLIClient) GetItem(ctx context.Context, vaultID, itemID string) (Item, error) {
	out, err := c.run(ctx, "item get", "item", "get", itemID, "--vault", vaultID, "--format", "json")
	if err != nil {
		return Item{}, err
	}

	var raw cliItem
	if err := json.Unmarshal(out, &raw); err != nil {
		return Item{}, fmt.Errorf("failed to parse item %q: %w", itemID, err)
	}
	return raw.toItem(vaultID), nil
}

// ResolveReference runs `op read` on an op:// reference.
func (c *CLIClient) ResolveReference(ctx context.Context, ref string) (string, error) {
	out, err := c.run(ctx, "read", "read", ref, "--no-newline")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// run executes op with the account flag appended, retrying transient failures.
func (c *CLIClient) run(ctx context.Context, op string, args ...string) ([]byte, error) {
	if c.Account != "" {
		args = append(args, "--account", c.Account)
	}

	executor, token, err := c.commandExecutor()
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.RetryDelay * time.Duration(attempt)):
			}
		}

		stdout, stderr, err := executor.Execute(ctx, "op", args...)
		if err == nil {
			return stdout, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = &CLIError{
			Op:       op,
			ExitCode: exec.ExitCode(err),
			Stderr:   logging.Redact(string(stderr), []string{token}),
			Err:      err,
		}
		if !cfgerrors.IsRetryable(lastErr) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// cliVault is an entry of `op vault list --format json`.
type cliVault struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// cliItemOverview is an entry of `op item list --format json`.
type cliItemOverview struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Vault struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"vault"`
}

// cliItem is the output of `op item get --format json`.
type cliItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Vault    struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"vault"`
	Sections []struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	} `json:"sections"`
	Fields []struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Label   string `json:"label"`
		Value   string `json:"value"`
		Section *struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"section"`
	} `json:"fields"`
}

func (ci cliItem) toItem(vaultID string) Item {
	item := Item{
		ID:       ci.ID,
		Title:    ci.Title,
		VaultID:  ci.Vault.ID,
		Fields:   make([]Field, 0, len(ci.Fields)),
		Sections: make([]Section, 0, len(ci.Sections)),
	}
	if item.VaultID == "" {
		item.VaultID = vaultID
	}
	for _, s := range ci.Sections {
		item.Sections = append(item.Sections, Section{ID: s.ID, Title: s.Label})
	}
	for _, f := range ci.Fields {
		field := Field{ID: f.ID, Title: f.Label, Value: f.Value}
		if f.Section != nil {
			field.SectionID = f.Section.ID
		}
		item.Fields = append(item.Fields, field)
	}
	return item
}

var _ Client = (*CLIClient)(nil)
