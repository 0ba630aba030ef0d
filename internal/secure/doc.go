// Package secure keeps credentials encrypted while they sit in memory.
//
// It wraps the memguard library: the service account token handed to
// configator is sealed in a memguard.Enclave (XSalsa20Poly1305) as soon as it
// is read and only decrypted for the moment it is passed to the op CLI.
//
//	cred := secure.NewCredential(os.Getenv("OP_SERVICE_ACCOUNT_TOKEN"))
//	defer cred.Destroy()
//
//	token, err := cred.Reveal()
//	if err != nil {
//	    return err
//	}
//
// This protects against secrets showing up in core dumps or swap. It does not
// protect against an attacker with access to the running process.
package secure
