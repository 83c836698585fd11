package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rhystmorgan/pbterm/internal/models"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	contactsFile = "contacts.json"
	databaseFile = "contacts.db"
)

var ErrContactNotFound = errors.New("contact not found")

// Repository persists the phonebook.
type Repository interface {
	LoadContacts(ctx context.Context) (*models.ContactList, error)
	AddContact(ctx context.Context, contact *models.Contact) error
	UpdateContact(ctx context.Context, id, name, number string) (*models.Contact, error)
	DeleteContact(ctx context.Context, id string) error
	Close() error
}

type Options struct {
	Backend    string
	DataDir    string
	Passphrase string
}

// Open creates the data directory and the configured backend.
func Open(opts Options) (Repository, error) {
	if err := os.MkdirAll(opts.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	switch opts.Backend {
	case BackendJSON, "":
		return NewFileStore(filepath.Join(opts.DataDir, contactsFile), opts.Passphrase), nil
	case BackendSQLite:
		return NewSQLStore(filepath.Join(opts.DataDir, databaseFile))
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", opts.Backend)
	}
}
