package account

import (
	"strings"
	"time"
)

// Kind discriminates the two account populations. Ledger logic treats both
// uniformly; the kind only frames presentation and transfer categorization.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindMerchant Kind = "merchant"
)

// Account represents a registered wallet owner.
type Account struct {
	ID           string
	Identity     string
	DisplayName  string
	Kind         Kind
	PasswordHash []byte
	CreatedAt    time.Time
}

// RegisterInput captures the data required to open an account.
type RegisterInput struct {
	Identity    string
	DisplayName string
	Secret      string
	Kind        Kind
}

// NormalizeIdentity canonicalizes a contact identity (email) so lookups are
// case- and whitespace-insensitive.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// DeriveID maps a normalized identity to a stable account identifier. The
// transform keeps the id safe for stores that restrict key characters while
// staying injective for realistic email inputs.
func DeriveID(identity string) string {
	id := NormalizeIdentity(identity)
	id = strings.ReplaceAll(id, ".", "_dot_")
	id = strings.ReplaceAll(id, "@", "_at_")
	return id
}
