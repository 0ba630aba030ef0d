// Package onepassword defines the secret-store collaborator consumed by the
// hydration engine and a Client implementation backed by the 1Password CLI.
//
// # Data Model
//
// A vault holds items. An item holds an ordered list of fields and an ordered
// list of sections. A field may be scoped to a section through its SectionID;
// an empty SectionID means the field lives at the top level of the item.
//
// # Indirect References
//
// Field values that start with "op://" are secret references. They are
// passed verbatim to Client.ResolveReference, which returns the value the
// reference points to (possibly another reference).
//
// # Authentication
//
// CLIClient authenticates the `op` CLI with a service-account token passed
// through the OP_SERVICE_ACCOUNT_TOKEN environment variable of each child
// process. The token never appears in command arguments or logs.
//
// # Threading and Concurrency
//
// CLIClient holds no mutable state and is safe for concurrent use.
package onepassword
