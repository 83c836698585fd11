package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"rhystmorgan/pbterm/internal/audit"
)

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Number    string    `json:"number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ContactList struct {
	Contacts []Contact `json:"contacts"`
}

func NewContact(name, number string) *Contact {
	now := time.Now()
	return &Contact{
		ID:        generateContactID(),
		Name:      name,
		Number:    number,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Update replaces name and number and reports what changed. Values are taken
// as-is: the edit dialog has already validated them.
func (c *Contact) Update(name, number string, auditor *audit.ContactAuditor) error {
	changes := make(map[string]audit.Change)

	if c.Name != name {
		changes["name"] = audit.Change{OldValue: c.Name, NewValue: name}
		c.Name = name
	}

	if c.Number != number {
		changes["number"] = audit.Change{OldValue: c.Number, NewValue: number}
		c.Number = number
	}

	if len(changes) == 0 {
		return nil
	}
	c.UpdatedAt = time.Now()

	if auditor != nil {
		return auditor.LogContactChange(c.ID, changes)
	}
	return nil
}

func (cl *ContactList) Add(contact *Contact, auditor *audit.ContactAuditor) error {
	if cl.FindByID(contact.ID) != nil {
		return fmt.Errorf("contact already exists: %s", contact.ID)
	}
	cl.Contacts = append(cl.Contacts, *contact)

	if auditor != nil {
		details := map[string]interface{}{
			"name":   contact.Name,
			"number": contact.Number,
		}
		return auditor.LogContactAction(audit.AuditActionCreate, contact.ID, details)
	}
	return nil
}

func (cl *ContactList) Remove(id string, auditor *audit.ContactAuditor) error {
	for i, contact := range cl.Contacts {
		if contact.ID == id {
			if auditor != nil {
				if err := auditor.LogContactAction(audit.AuditActionDelete, contact.ID, nil); err != nil {
					return err
				}
			}
			cl.Contacts = append(cl.Contacts[:i], cl.Contacts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("contact not found: %s", id)
}

func (cl *ContactList) FindByID(id string) *Contact {
	for i, contact := range cl.Contacts {
		if contact.ID == id {
			return &cl.Contacts[i]
		}
	}
	return nil
}

// Snapshot returns a copy of the contacts that callers may keep without
// observing later mutations of the list.
func (cl *ContactList) Snapshot() []Contact {
	out := make([]Contact, len(cl.Contacts))
	copy(out, cl.Contacts)
	return out
}

// Filter returns the contacts whose name or number contains query
// (case-insensitive), sorted by name.
func (cl *ContactList) Filter(query string) []Contact {
	query = strings.ToLower(strings.TrimSpace(query))

	results := make([]Contact, 0, len(cl.Contacts))
	for _, contact := range cl.Contacts {
		if query != "" &&
			!strings.Contains(strings.ToLower(contact.Name), query) &&
			!strings.Contains(contact.Number, query) {
			continue
		}
		results = append(results, contact)
	}

	SortByName(results)
	return results
}

func SortByName(contacts []Contact) {
	sort.SliceStable(contacts, func(i, j int) bool {
		return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[j].Name)
	})
}

func generateContactID() string {
	return uuid.NewString()
}
