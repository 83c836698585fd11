package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"rhystmorgan/pbterm/internal/models"
)

// FileStore keeps the phonebook in a single JSON file. With a passphrase
// the file holds an EncryptedData envelope instead of the plain list.
type FileStore struct {
	path       string
	passphrase string
	mu         sync.Mutex
}

func NewFileStore(path, passphrase string) *FileStore {
	return &FileStore{path: path, passphrase: passphrase}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) LoadContacts(ctx context.Context) (*models.ContactList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *FileStore) AddContact(ctx context.Context, contact *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return err
	}

	if err := contacts.Add(contact, nil); err != nil {
		return fmt.Errorf("failed to add contact: %w", err)
	}

	return s.save(contacts)
}

func (s *FileStore) UpdateContact(ctx context.Context, id, name, number string) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return nil, err
	}

	contact := contacts.FindByID(id)
	if contact == nil {
		return nil, fmt.Errorf("%w: %s", ErrContactNotFound, id)
	}

	if err := contact.Update(name, number, nil); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	if err := s.save(contacts); err != nil {
		return nil, err
	}

	updated := *contact
	return &updated, nil
}

func (s *FileStore) DeleteContact(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return err
	}

	if contacts.FindByID(id) == nil {
		return fmt.Errorf("%w: %s", ErrContactNotFound, id)
	}
	if err := contacts.Remove(id, nil); err != nil {
		return err
	}

	return s.save(contacts)
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (*models.ContactList, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &models.ContactList{Contacts: []models.Contact{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read contacts file: %w", err)
	}

	if s.passphrase != "" {
		var envelope EncryptedData
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("failed to unmarshal encrypted contacts: %w", err)
		}
		if data, err = Decrypt(&envelope, s.passphrase); err != nil {
			return nil, fmt.Errorf("failed to decrypt contacts: %w", err)
		}
	}

	var contacts models.ContactList
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contacts: %w", err)
	}
	if contacts.Contacts == nil {
		contacts.Contacts = []models.Contact{}
	}

	return &contacts, nil
}

func (s *FileStore) save(contacts *models.ContactList) error {
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal contacts: %w", err)
	}

	if s.passphrase != "" {
		envelope, err := Encrypt(data, s.passphrase)
		if err != nil {
			return fmt.Errorf("failed to encrypt contacts: %w", err)
		}
		if data, err = json.Marshal(envelope); err != nil {
			return fmt.Errorf("failed to marshal encrypted contacts: %w", err)
		}
	}

	// Write through a temp file so a crash never leaves a truncated phonebook.
	tmp := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write contacts file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write contacts file: %w", err)
	}

	return nil
}
