package validation

import (
	"strings"

	"rhystmorgan/pbterm/internal/models"
)

const (
	NameTakenMessage   = "This name already exists in your phonebook"
	NumberTakenMessage = "This number already exists in your phonebook"
)

// CheckUniqueness scans contacts once and reports whether name or number is
// already held by a contact other than editingID. Names compare
// case-insensitively, numbers exactly. A name collision is reported in
// preference to a number collision.
func CheckUniqueness(contacts []models.Contact, editingID, name, number string) error {
	var nameOwner, numberOwner string
	nameTaken, numberTaken := false, false

	for _, contact := range contacts {
		if contact.ID == editingID {
			continue
		}
		if !nameTaken && strings.EqualFold(contact.Name, name) {
			nameTaken = true
			nameOwner = contact.ID
		}
		if !numberTaken && contact.Number == number {
			numberTaken = true
			numberOwner = contact.ID
		}
		if nameTaken && numberTaken {
			break
		}
	}

	switch {
	case nameTaken:
		return &CollisionError{Kind: NameCollision, ContactID: nameOwner, Message: NameTakenMessage}
	case numberTaken:
		return &CollisionError{Kind: NumberCollision, ContactID: numberOwner, Message: NumberTakenMessage}
	default:
		return nil
	}
}
