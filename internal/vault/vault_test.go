package vault_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"didvault/internal/domain"
	"didvault/internal/vault"
)

func fixedClock(sec int64) func() time.Time {
	return func() time.Time { return time.Unix(sec, 0) }
}

func TestCreateIdentity_Duplicate(t *testing.T) {
	v := vault.New("admin", vault.WithClock(fixedClock(100)))

	rec, err := v.CreateIdentity("did:dv:abc", "alice", "m")
	require.NoError(t, err)
	assert.Equal(t, domain.IdentityRecord{ID: "did:dv:abc", Owner: "alice", Metadata: "m", CreatedAt: 100}, rec)

	_, err = v.CreateIdentity("did:dv:abc", "alice", "m2")
	require.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, ok := v.GetIdentity("did:dv:abc")
	require.True(t, ok)
	assert.Equal(t, "m", got.Metadata)
	assert.Equal(t, 1, v.Len())
}

func TestUpdateIdentity_OwnershipGate(t *testing.T) {
	now := int64(100)
	v := vault.New("admin", vault.WithClock(func() time.Time { return time.Unix(now, 0) }))
	_, err := v.CreateIdentity("did:dv:1", "alice", "meta")
	require.NoError(t, err)

	_, err = v.UpdateIdentity("did:dv:1", "bob", "evil")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	// Owner comparison is case-sensitive.
	_, err = v.UpdateIdentity("did:dv:1", "Alice", "evil")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	now = 200
	rec, err := v.UpdateIdentity("did:dv:1", "alice", "new-meta")
	require.NoError(t, err)
	assert.Equal(t, "new-meta", rec.Metadata)
	assert.Equal(t, int64(100), rec.CreatedAt)

	got, ok := v.GetIdentity("did:dv:1")
	require.True(t, ok)
	assert.Equal(t, "new-meta", got.Metadata)
	assert.Equal(t, int64(100), got.CreatedAt)

	_, err = v.UpdateIdentity("did:dv:missing", "alice", "x")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRevokeIdentity(t *testing.T) {
	v := vault.New("admin")
	_, err := v.CreateIdentity("did:dv:1", "alice", "meta")
	require.NoError(t, err)

	require.ErrorIs(t, v.RevokeIdentity("did:dv:1", "bob"), domain.ErrUnauthorized)
	_, ok := v.GetIdentity("did:dv:1")
	require.True(t, ok)

	require.NoError(t, v.RevokeIdentity("did:dv:1", "alice"))
	_, ok = v.GetIdentity("did:dv:1")
	assert.False(t, ok)
	assert.Equal(t, 0, v.Len())

	require.ErrorIs(t, v.RevokeIdentity("did:dv:1", "alice"), domain.ErrNotFound)

	// The id is free again once revoked.
	_, err = v.CreateIdentity("did:dv:1", "bob", "again")
	require.NoError(t, err)
}

func TestRevokeIdentity_CascadesCredentials(t *testing.T) {
	v := vault.New("admin")
	_, err := v.CreateIdentity("did:dv:1", "alice", "meta")
	require.NoError(t, err)
	_, err = v.IssueCredential("did:dv:1", "alice", "license", "gold")
	require.NoError(t, err)

	require.NoError(t, v.RevokeIdentity("did:dv:1", "alice"))
	_, ok := v.GetCredential("did:dv:1", "license")
	assert.False(t, ok)

	// A new owner of the same id does not inherit the old credentials.
	_, err = v.CreateIdentity("did:dv:1", "mallory", "meta")
	require.NoError(t, err)
	_, ok = v.GetCredential("did:dv:1", "license")
	assert.False(t, ok)
	assert.Empty(t, v.ListCredentials("did:dv:1"))
}

func TestCredentialScoping(t *testing.T) {
	v := vault.New("admin", vault.WithClock(fixedClock(42)))
	_, err := v.CreateIdentity("did:dv:abc", "alice", "m")
	require.NoError(t, err)

	cred, err := v.IssueCredential("did:dv:abc", "alice", "cred1", "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.CredentialRecord{Key: "cred1", Value: "v1", IssuedAt: 42}, cred)

	got, ok := v.GetCredential("did:dv:abc", "cred1")
	require.True(t, ok)
	assert.Equal(t, "v1", got.Value)

	_, ok = v.GetCredential("did:dv:xyz", "cred1")
	assert.False(t, ok)
	_, ok = v.GetCredential("did:dv:abc", "cred2")
	assert.False(t, ok)
}

func TestIssueCredential_Failures(t *testing.T) {
	v := vault.New("admin")
	_, err := v.IssueCredential("did:dv:none", "alice", "k", "v")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = v.CreateIdentity("did:dv:1", "alice", "m")
	require.NoError(t, err)
	_, err = v.IssueCredential("did:dv:1", "bob", "k", "v")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, ok := v.GetCredential("did:dv:1", "k")
	assert.False(t, ok)
}

func TestIssueCredential_Overwrite(t *testing.T) {
	now := int64(10)
	v := vault.New("admin", vault.WithClock(func() time.Time { return time.Unix(now, 0) }))
	_, err := v.CreateIdentity("did:dv:1", "alice", "m")
	require.NoError(t, err)

	_, err = v.IssueCredential("did:dv:1", "alice", "k", "v1")
	require.NoError(t, err)
	now = 20
	_, err = v.IssueCredential("did:dv:1", "alice", "k", "v2")
	require.NoError(t, err)

	got, ok := v.GetCredential("did:dv:1", "k")
	require.True(t, ok)
	assert.Equal(t, domain.CredentialRecord{Key: "k", Value: "v2", IssuedAt: 20}, got)
	assert.Len(t, v.ListCredentials("did:dv:1"), 1)
}

func TestRevokeCredential_Scenario(t *testing.T) {
	v := vault.New("admin")
	_, err := v.CreateIdentity("did:dv:1", "alice", "meta")
	require.NoError(t, err)
	_, err = v.IssueCredential("did:dv:1", "alice", "license", "gold")
	require.NoError(t, err)

	err = v.RevokeCredential("did:dv:1", "bob", "license")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	got, ok := v.GetCredential("did:dv:1", "license")
	require.True(t, ok)
	assert.Equal(t, "gold", got.Value)

	require.NoError(t, v.RevokeCredential("did:dv:1", "alice", "license"))
	_, ok = v.GetCredential("did:dv:1", "license")
	assert.False(t, ok)
}

func TestRevokeCredential_NotFound(t *testing.T) {
	v := vault.New("admin")
	require.ErrorIs(t, v.RevokeCredential("did:dv:none", "alice", "k"), domain.ErrNotFound)

	_, err := v.CreateIdentity("did:dv:1", "alice", "m")
	require.NoError(t, err)

	// No credentials at all.
	err = v.RevokeCredential("did:dv:1", "alice", "k")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, err, vault.ErrCredentialNotFound)

	// Owner is checked before the credential lookup.
	require.ErrorIs(t, v.RevokeCredential("did:dv:1", "bob", "k"), domain.ErrUnauthorized)

	_, err = v.IssueCredential("did:dv:1", "alice", "a", "1")
	require.NoError(t, err)
	require.ErrorIs(t, v.RevokeCredential("did:dv:1", "alice", "b"), vault.ErrCredentialNotFound)
}

func TestListCredentials_Sorted(t *testing.T) {
	v := vault.New("admin")
	_, err := v.CreateIdentity("did:dv:1", "alice", "m")
	require.NoError(t, err)
	for _, k := range []string{"c", "a", "b"} {
		_, err := v.IssueCredential("did:dv:1", "alice", k, "v-"+k)
		require.NoError(t, err)
	}
	creds := v.ListCredentials("did:dv:1")
	require.Len(t, creds, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{creds[0].Key, creds[1].Key, creds[2].Key})
	assert.Nil(t, v.ListCredentials("did:dv:none"))
}

func TestAdmin(t *testing.T) {
	v := vault.New("root")
	assert.Equal(t, domain.Owner("root"), v.Admin())

	// The admin has no override over other owners' identities.
	_, err := v.CreateIdentity("did:dv:1", "alice", "m")
	require.NoError(t, err)
	require.ErrorIs(t, v.RevokeIdentity("did:dv:1", "root"), domain.ErrUnauthorized)
}

func TestConcurrentUpdateAndRevoke(t *testing.T) {
	for round := 0; round < 50; round++ {
		v := vault.New("admin")
		id := domain.DID(fmt.Sprintf("did:dv:%d", round))
		_, err := v.CreateIdentity(id, "alice", "m0")
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, 80)
		for i := 0; i < 32; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				_, err := v.UpdateIdentity(id, "alice", fmt.Sprintf("m%d", i))
				errs <- err
			}(i)
			go func(i int) {
				defer wg.Done()
				_, err := v.IssueCredential(id, "alice", fmt.Sprintf("k%d", i), "v")
				errs <- err
			}(i)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- v.RevokeIdentity(id, "alice")
		}()
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				require.ErrorIs(t, err, domain.ErrNotFound)
			}
		}
		_, ok := v.GetIdentity(id)
		assert.False(t, ok)
		assert.Empty(t, v.ListCredentials(id))
		assert.Equal(t, 0, v.Len())
	}
}

func TestConcurrentIndependentIdentities(t *testing.T) {
	v := vault.New("admin")
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := domain.DID(fmt.Sprintf("did:dv:%d", i))
			owner := domain.Owner(fmt.Sprintf("owner-%d", i))
			_, err := v.CreateIdentity(id, owner, "m")
			assert.NoError(t, err)
			_, err = v.IssueCredential(id, owner, "k", "v")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 64, v.Len())
	for i := 0; i < 64; i++ {
		_, ok := v.GetCredential(domain.DID(fmt.Sprintf("did:dv:%d", i)), "k")
		assert.True(t, ok)
	}
}
