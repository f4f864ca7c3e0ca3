package vault

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"didvault/internal/domain"
)

// ErrCredentialNotFound is returned by RevokeCredential when the identity is
// active but holds no credential under the requested key. It matches
// domain.ErrNotFound with errors.Is.
var ErrCredentialNotFound = fmt.Errorf("credential %w", domain.ErrNotFound)

// Vault is an in-memory identity and credential store.
//
// The id index is guarded by mu; every identity carries its own lock guarding
// its record and credentials. Operations on different identities run in
// parallel, operations on the same identity are serialised.
type Vault struct {
	admin domain.Owner
	now   func() time.Time

	mu      sync.RWMutex
	entries map[domain.DID]*entry
}

type entry struct {
	mu      sync.Mutex
	revoked atomic.Bool
	record  domain.IdentityRecord
	creds   map[string]domain.CredentialRecord
}

// Option configures a Vault.
type Option func(*Vault)

// WithClock overrides the time source used for CreatedAt and IssuedAt.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) { v.now = now }
}

// New returns an empty vault administered by admin.
func New(admin domain.Owner, opts ...Option) *Vault {
	v := &Vault{
		admin:   admin,
		now:     time.Now,
		entries: make(map[domain.DID]*entry),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Admin returns the principal the vault was constructed with.
func (v *Vault) Admin() domain.Owner { return v.admin }

// Len returns the number of active identities.
func (v *Vault) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}

// CreateIdentity records a new identity. Anyone may create an identity; it
// fails with ErrAlreadyExists if id is active.
func (v *Vault) CreateIdentity(id domain.DID, owner domain.Owner, metadata string) (domain.IdentityRecord, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if e, ok := v.entries[id]; ok && !e.revoked.Load() {
		return domain.IdentityRecord{}, fmt.Errorf("identity %q: %w", id, domain.ErrAlreadyExists)
	}
	rec := domain.IdentityRecord{
		ID:        id,
		Owner:     owner,
		Metadata:  metadata,
		CreatedAt: v.now().Unix(),
	}
	v.entries[id] = &entry{record: rec}
	return rec, nil
}

// UpdateIdentity replaces the metadata of an identity owned by owner.
func (v *Vault) UpdateIdentity(id domain.DID, owner domain.Owner, metadata string) (domain.IdentityRecord, error) {
	e, err := v.lockOwned(id, owner)
	if err != nil {
		return domain.IdentityRecord{}, err
	}
	defer e.mu.Unlock()

	e.record.Metadata = metadata
	return e.record, nil
}

// RevokeIdentity removes an identity owned by owner together with all of its
// credentials.
func (v *Vault) RevokeIdentity(id domain.DID, owner domain.Owner) error {
	e, err := v.lockOwned(id, owner)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	e.revoked.Store(true)
	e.creds = nil

	v.mu.Lock()
	if v.entries[id] == e {
		delete(v.entries, id)
	}
	v.mu.Unlock()
	return nil
}

// GetIdentity returns the active identity id. No ownership check is made.
func (v *Vault) GetIdentity(id domain.DID) (domain.IdentityRecord, bool) {
	e, ok := v.lockActive(id)
	if !ok {
		return domain.IdentityRecord{}, false
	}
	defer e.mu.Unlock()
	return e.record, true
}

// IssueCredential stores value under key for an identity owned by owner,
// overwriting any previous credential with that key.
func (v *Vault) IssueCredential(id domain.DID, owner domain.Owner, key, value string) (domain.CredentialRecord, error) {
	e, err := v.lockOwned(id, owner)
	if err != nil {
		return domain.CredentialRecord{}, err
	}
	defer e.mu.Unlock()

	cred := domain.CredentialRecord{Key: key, Value: value, IssuedAt: v.now().Unix()}
	if e.creds == nil {
		e.creds = make(map[string]domain.CredentialRecord)
	}
	e.creds[key] = cred
	return cred, nil
}

// RevokeCredential removes the credential key from an identity owned by owner.
func (v *Vault) RevokeCredential(id domain.DID, owner domain.Owner, key string) error {
	e, err := v.lockOwned(id, owner)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	if _, ok := e.creds[key]; !ok {
		return fmt.Errorf("identity %q key %q: %w", id, key, ErrCredentialNotFound)
	}
	delete(e.creds, key)
	return nil
}

// GetCredential returns the credential key of identity id. Reads are open:
// no ownership check is made.
func (v *Vault) GetCredential(id domain.DID, key string) (domain.CredentialRecord, bool) {
	e, ok := v.lockActive(id)
	if !ok {
		return domain.CredentialRecord{}, false
	}
	defer e.mu.Unlock()
	cred, ok := e.creds[key]
	return cred, ok
}

// ListCredentials returns the credentials of identity id sorted by key.
func (v *Vault) ListCredentials(id domain.DID) []domain.CredentialRecord {
	e, ok := v.lockActive(id)
	if !ok {
		return nil
	}
	defer e.mu.Unlock()

	out := make([]domain.CredentialRecord, 0, len(e.creds))
	for _, c := range e.creds {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// lockActive returns the entry for id with its lock held, or false if the
// identity is not active.
func (v *Vault) lockActive(id domain.DID) (*entry, bool) {
	v.mu.RLock()
	e, ok := v.entries[id]
	v.mu.RUnlock()
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	if e.revoked.Load() {
		// Revoked between the lookup and the lock.
		e.mu.Unlock()
		return nil, false
	}
	return e, true
}

// lockOwned is lockActive plus the owner check.
func (v *Vault) lockOwned(id domain.DID, owner domain.Owner) (*entry, error) {
	e, ok := v.lockActive(id)
	if !ok {
		return nil, fmt.Errorf("identity %q: %w", id, domain.ErrNotFound)
	}
	if e.record.Owner != owner {
		e.mu.Unlock()
		return nil, fmt.Errorf("identity %q: %w", id, domain.ErrUnauthorized)
	}
	return e, nil
}

// Compile-time assertion that Vault implements domain.IdentityVault.
var _ domain.IdentityVault = (*Vault)(nil)
