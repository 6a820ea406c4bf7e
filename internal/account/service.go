package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const minSecretLength = 6

// Service manages account lifecycle and credential verification. It is the
// only component that ever touches a secret; nothing outside this package
// sees one in plaintext.
type Service struct {
	repo Repository
}

// NewService creates a new account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register opens an account with a hashed secret.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Account, error) {
	identity := NormalizeIdentity(input.Identity)
	if identity == "" || !strings.Contains(identity, "@") {
		return Account{}, errors.New("identity must be an email address")
	}
	if len(input.Secret) < minSecretLength {
		return Account{}, errors.New("secret must be at least 6 characters")
	}
	kind := input.Kind
	if kind == "" {
		kind = KindCustomer
	}
	if kind != KindCustomer && kind != KindMerchant {
		return Account{}, errors.New("kind must be customer or merchant")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Secret), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	acct := Account{
		ID:           DeriveID(identity),
		Identity:     identity,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Kind:         kind,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// Verify checks the secret against the stored hash and returns the account.
func (s *Service) Verify(ctx context.Context, identity, secret string) (Account, error) {
	acct, err := s.repo.FindByIdentity(ctx, identity)
	if err != nil {
		return Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(secret)); err != nil {
		return Account{}, ErrInvalidCredential
	}
	return acct, nil
}

// Remove deletes an account record. Registration uses it to roll back the
// credential side when the ledger entry cannot be created.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Resolve maps a contact identity to its account.
func (s *Service) Resolve(ctx context.Context, identity string) (Account, error) {
	return s.repo.FindByIdentity(ctx, identity)
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.repo.FindByID(ctx, id)
}
