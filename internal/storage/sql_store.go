package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rhystmorgan/pbterm/internal/models"
)

type contactRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Number    string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (contactRecord) TableName() string {
	return "contacts"
}

func (r contactRecord) toModel() models.Contact {
	return models.Contact{
		ID:        r.ID,
		Name:      r.Name,
		Number:    r.Number,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// SQLStore keeps the phonebook in a sqlite database through gorm.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens (or creates) the database at dsn and migrates the schema.
// ":memory:" is accepted for tests.
func NewSQLStore(dsn string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open contacts database: %w", err)
	}

	if err := db.AutoMigrate(&contactRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate contacts database: %w", err)
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) LoadContacts(ctx context.Context) (*models.ContactList, error) {
	var records []contactRecord
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}

	list := &models.ContactList{Contacts: make([]models.Contact, 0, len(records))}
	for _, r := range records {
		list.Contacts = append(list.Contacts, r.toModel())
	}
	return list, nil
}

func (s *SQLStore) AddContact(ctx context.Context, contact *models.Contact) error {
	record := contactRecord{
		ID:        contact.ID,
		Name:      contact.Name,
		Number:    contact.Number,
		CreatedAt: contact.CreatedAt,
		UpdatedAt: contact.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to add contact: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdateContact(ctx context.Context, id, name, number string) (*models.Contact, error) {
	var record contactRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrContactNotFound, id)
			}
			return err
		}

		if record.Name == name && record.Number == number {
			return nil
		}
		record.Name = name
		record.Number = number
		return tx.Save(&record).Error
	})
	if err != nil {
		if errors.Is(err, ErrContactNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	contact := record.toModel()
	return &contact, nil
}

func (s *SQLStore) DeleteContact(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&contactRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrContactNotFound, id)
	}
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
