package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhystmorgan/pbterm/internal/models"
)

func backends(t *testing.T) map[string]Repository {
	t.Helper()

	dir := t.TempDir()
	sqlStore, err := NewSQLStore(filepath.Join(dir, "contacts.db"))
	require.NoError(t, err)

	repos := map[string]Repository{
		"json":           NewFileStore(filepath.Join(dir, "plain.json"), ""),
		"encrypted json": NewFileStore(filepath.Join(dir, "sealed.json"), "s3cret"),
		"sqlite":         sqlStore,
	}
	t.Cleanup(func() {
		for _, r := range repos {
			_ = r.Close()
		}
	})
	return repos
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			empty, err := repo.LoadContacts(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty.Contacts)

			bob := models.NewContact("Bob", "123")
			eve := models.NewContact("Eve", "999")
			require.NoError(t, repo.AddContact(ctx, bob))
			require.NoError(t, repo.AddContact(ctx, eve))

			updated, err := repo.UpdateContact(ctx, bob.ID, "Robert", "124")
			require.NoError(t, err)
			assert.Equal(t, "Robert", updated.Name)
			assert.Equal(t, "124", updated.Number)

			list, err := repo.LoadContacts(ctx)
			require.NoError(t, err)
			require.Len(t, list.Contacts, 2)
			got := list.FindByID(bob.ID)
			require.NotNil(t, got)
			assert.Equal(t, "Robert", got.Name)

			require.NoError(t, repo.DeleteContact(ctx, eve.ID))
			list, err = repo.LoadContacts(ctx)
			require.NoError(t, err)
			assert.Len(t, list.Contacts, 1)
		})
	}
}

func TestRepositoryMissingContact(t *testing.T) {
	ctx := context.Background()

	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.UpdateContact(ctx, "missing", "Bob", "123")
			assert.True(t, errors.Is(err, ErrContactNotFound), "got %v", err)

			err = repo.DeleteContact(ctx, "missing")
			assert.True(t, errors.Is(err, ErrContactNotFound), "got %v", err)
		})
	}
}

func TestFileStoreEncryptsAtRest(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "contacts.json")

	sealed := NewFileStore(path, "s3cret")
	require.NoError(t, sealed.AddContact(ctx, models.NewContact("Bob", "123")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Bob")

	_, err = NewFileStore(path, "wrong").LoadContacts(ctx)
	assert.True(t, errors.Is(err, ErrWrongPassphrase), "got %v", err)

	list, err := NewFileStore(path, "s3cret").LoadContacts(ctx)
	require.NoError(t, err)
	require.Len(t, list.Contacts, 1)
	assert.Equal(t, "Bob", list.Contacts[0].Name)
}

func TestEncryptDecrypt(t *testing.T) {
	plain := []byte(`{"contacts":[]}`)

	a, err := Encrypt(plain, "pw")
	require.NoError(t, err)
	b, err := Encrypt(plain, "pw")
	require.NoError(t, err)
	assert.NotEqual(t, a.Nonce, b.Nonce)

	out, err := Decrypt(a, "pw")
	require.NoError(t, err)
	assert.Equal(t, plain, out)

	_, err = Decrypt(nil, "pw")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	repo, err := Open(Options{Backend: BackendJSON, DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, repo)
	assert.DirExists(t, dir)

	repo, err = Open(Options{Backend: BackendSQLite, DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, repo)
	require.NoError(t, repo.Close())

	_, err = Open(Options{Backend: "redis", DataDir: dir})
	assert.Error(t, err)
}
