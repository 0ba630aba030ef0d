package configator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	cfgerrors "github.com/utiligize/configator/internal/errors"
	"github.com/utiligize/configator/internal/logging"
	"github.com/utiligize/configator/internal/secure"
	"github.com/utiligize/configator/pkg/exec"
	"github.com/utiligize/configator/pkg/hydrate"
	"github.com/utiligize/configator/pkg/onepassword"
)

// IntegrationName identifies this library to 1Password.
const IntegrationName = "configator"

const defaultRetryDelay = 250 * time.Millisecond

// Version is the library version reported alongside IntegrationName.
var Version = "dev"

var (
	// ErrVaultNotFound means no vault title equals the requested name.
	ErrVaultNotFound = errors.New("vault not found")

	// ErrItemNotFound means no item in the vault has the requested title.
	ErrItemNotFound = errors.New("item not found")
)

var defaultLogger atomic.Pointer[logging.Logger]

// ConfigureLogging sets the logger used when no WithLogger option is given.
// An empty level falls back to LOG_LEVEL, then to warn. A nil writer means
// stderr.
func ConfigureLogging(level string, w io.Writer) error {
	if level == "" {
		level = os.Getenv(logging.LevelEnv)
	}
	if level == "" {
		level = "warn"
	}
	if w == nil {
		w = os.Stderr
	}
	logger, err := logging.NewWithLevel(w, level)
	if err != nil {
		return cfgerrors.ConfigError{
			Field:      "log_level",
			Value:      level,
			Message:    err.Error(),
			Suggestion: "Use one of debug, info, warn or error",
		}
	}
	defaultLogger.Store(logger)
	return nil
}

func packageLogger() *logging.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l, err := logging.FromEnv("warn")
	if err != nil {
		l, _ = logging.NewWithLevel(os.Stderr, "warn")
	}
	defaultLogger.CompareAndSwap(nil, l)
	return defaultLogger.Load()
}

// Option configures a load.
type Option func(*options)

type options struct {
	client     onepassword.Client
	logger     *logging.Logger
	account    string
	executor   exec.CommandExecutor
	retries    int
	retryDelay time.Duration
	jsonSchema []byte
}

func newOptions(opts []Option) *options {
	o := &options{retries: -1}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = packageLogger()
	}
	return o
}

// WithClient uses client instead of building an op CLI client. The
// credential argument is then ignored.
func WithClient(client onepassword.Client) Option {
	return func(o *options) { o.client = client }
}

// WithLogger overrides the package logger for one load.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithAccount passes --account to every op command.
func WithAccount(account string) Option {
	return func(o *options) { o.account = account }
}

// WithExecutor runs op through executor. Mostly useful in tests.
func WithExecutor(executor exec.CommandExecutor) Option {
	return func(o *options) { o.executor = executor }
}

// WithRetries sets how often transient op failures are retried.
func WithRetries(retries int, delay time.Duration) Option {
	return func(o *options) {
		o.retries = retries
		o.retryDelay = delay
	}
}

// WithJSONSchema validates the loaded configuration against a JSON schema.
func WithJSONSchema(schema []byte) Option {
	return func(o *options) { o.jsonSchema = schema }
}

// NewClient creates an op CLI client authenticated with credential.
func NewClient(credential *secure.Credential, opts ...Option) onepassword.Client {
	return newOptions(opts).newClient(credential)
}

func (o *options) newClient(credential *secure.Credential) onepassword.Client {
	o.logger.Debug("creating 1Password client for %s %s", IntegrationName, Version)

	var cliOpts []onepassword.CLIOption
	if o.account != "" {
		cliOpts = append(cliOpts, onepassword.WithAccount(o.account))
	}
	if o.executor != nil {
		cliOpts = append(cliOpts, onepassword.WithExecutor(o.executor))
	}
	if o.retries >= 0 {
		cliOpts = append(cliOpts, onepassword.WithRetries(o.retries, o.retryDelay))
	}
	return onepassword.NewCLIClient(credential, cliOpts...)
}

// Load hydrates a new T from the item titled itemName in the vault titled
// vaultName. An empty credential relies on the op CLI's own session.
func Load[T any](ctx context.Context, credential, vaultName, itemName string, opts ...Option) (T, error) {
	var out T
	if err := LoadConfig(ctx, credential, vaultName, itemName, &out, opts...); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// LoadConfig hydrates target, a pointer to a struct, from the item titled
// itemName in the vault titled vaultName. target is only modified on success.
func LoadConfig(ctx context.Context, credential, vaultName, itemName string, target interface{}, opts ...Option) error {
	o := newOptions(opts)
	cred := secure.NewCredential(credential)
	defer cred.Destroy()

	client := o.client
	if client == nil {
		client = o.newClient(cred)
	}
	return o.load(ctx, client, vaultName, itemName, target)
}

func (o *options) load(ctx context.Context, client onepassword.Client, vaultName, itemName string, target interface{}) (err error) {
	start := time.Now()
	defer func() { observeLoad(err, time.Since(start)) }()

	log := o.logger.With("vault", vaultName).With("item", itemName)

	item, err := fetchItem(ctx, client, log, vaultName, itemName)
	if err != nil {
		return err
	}

	h := hydrate.New(client, hydrate.WithLogger(log), hydrate.WithJSONSchema(o.jsonSchema))
	if err := h.Hydrate(ctx, item, target); err != nil {
		return hydrationError(itemName, err)
	}
	log.Debug("loaded configuration")
	return nil
}

// fetchItem finds the vault and item by exact title and fetches the item.
func fetchItem(ctx context.Context, client onepassword.Client, log *logging.Logger, vaultName, itemName string) (onepassword.Item, error) {
	vaults, err := client.ListVaults(ctx)
	if err != nil {
		return onepassword.Item{}, storeError(ctx, "vault lookup", err)
	}
	var vault *onepassword.Vault
	for i := range vaults {
		if vaults[i].Title == vaultName {
			vault = &vaults[i]
			break
		}
	}
	if vault == nil {
		log.Warn("vault '%s' not found", vaultName)
		return onepassword.Item{}, cfgerrors.UserError{
			Message:    fmt.Sprintf("%s: no vault titled %q", ErrVaultNotFound, vaultName),
			Suggestion: "Vault titles are matched exactly. Use 'op vault list' to see the vaults this token can access",
			Err:        ErrVaultNotFound,
		}
	}

	overviews, err := client.ListItems(ctx, vault.ID)
	if err != nil {
		return onepassword.Item{}, storeError(ctx, "item lookup", err)
	}
	var itemID string
	for _, ov := range overviews {
		if ov.Title == itemName {
			itemID = ov.ID
			break
		}
	}
	if itemID == "" {
		log.Warn("item '%s' not found in vault '%s'", itemName, vaultName)
		return onepassword.Item{}, cfgerrors.UserError{
			Message:    fmt.Sprintf("%s: no item titled %q in vault %q", ErrItemNotFound, itemName, vaultName),
			Suggestion: fmt.Sprintf("Item titles are matched exactly. Use 'op item list --vault %s' to see available items", vault.ID),
			Err:        ErrItemNotFound,
		}
	}

	item, err := client.GetItem(ctx, vault.ID, itemID)
	if err != nil {
		return onepassword.Item{}, storeError(ctx, "item fetch", err)
	}
	return item, nil
}

func storeError(ctx context.Context, operation string, err error) error {
	if ctx.Err() != nil {
		return err
	}
	return cfgerrors.StoreError(operation, err)
}

// hydrationError adds a suggestion to hydration failures the user can fix in
// 1Password or in the schema.
func hydrationError(itemName string, err error) error {
	var suggestion string
	var fe *hydrate.FieldError
	path := ""
	if errors.As(err, &fe) {
		path = fe.Path
	}

	switch {
	case errors.Is(err, hydrate.ErrSectionNotFound):
		suggestion = fmt.Sprintf("Add a section for '%s' to item '%s'", path, itemName)
	case errors.Is(err, hydrate.ErrRequiredFieldMissing):
		suggestion = fmt.Sprintf("Add a field for '%s' to item '%s' or give the schema field a default", path, itemName)
	case errors.Is(err, hydrate.ErrInvalidBooleanLiteral):
		suggestion = "Use one of true/1/yes/on or false/0/no/off"
	case errors.Is(err, hydrate.ErrMalformedContainerLiteral):
		suggestion = "Store lists, maps and sets as JSON"
	case errors.Is(err, hydrate.ErrReferenceChainTooDeep):
		suggestion = fmt.Sprintf("Check for op:// references that point back at each other (at most %d hops are followed)", hydrate.MaxReferenceDepth)
	case errors.Is(err, hydrate.ErrInvalidSchema):
		suggestion = "Fix the schema struct tags"
	default:
		return err
	}
	return cfgerrors.UserError{Message: err.Error(), Suggestion: suggestion, Err: err}
}
