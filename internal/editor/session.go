// Package editor implements the edit-contact dialog's submission gate: it
// owns the draft for one dialog lifetime, validates it, checks it against the
// other contacts and hands an update command to the store.
//
// A Session is driven from a single goroutine (the UI event loop) and holds
// no locks.
package editor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"rhystmorgan/pbterm/internal/models"
	"rhystmorgan/pbterm/internal/validation"
)

// DiscardPrompt is the confirmation asked before a dialog with a draft is
// closed without saving.
const DiscardPrompt = "Are you sure you want to discard changes?"

// State is the position of a Session in the submission state machine.
type State int

const (
	StateEditing State = iota
	StateValidating
	StateRejected
	StateSubmitting
	StateConfirmingClose
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateRejected:
		return "rejected"
	case StateSubmitting:
		return "submitting"
	case StateConfirmingClose:
		return "confirming_close"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Outcome reports what a Submit or Cancel call did.
type Outcome int

const (
	OutcomeSubmitted Outcome = iota
	OutcomeInvalid
	OutcomeNameTaken
	OutcomeNumberTaken
	OutcomeCancelled
	OutcomeKept
	OutcomeClosed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeNameTaken:
		return "name_taken"
	case OutcomeNumberTaken:
		return "number_taken"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeKept:
		return "kept"
	case OutcomeClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// UpdateData carries the new field values of an update.
type UpdateData struct {
	Name   string
	Number string
}

// UpdateCommand is handed to the store when a draft passes every check.
type UpdateCommand struct {
	ID   string
	Data UpdateData
}

// ContactReader returns a snapshot of the current contact collection.
type ContactReader interface {
	Contacts() []models.Contact
}

// ContactUpdater accepts update commands. It is fire-and-forget: any
// persistence failure is the store's to report.
type ContactUpdater interface {
	UpdateContact(cmd UpdateCommand)
}

// Notifier surfaces uniqueness failures to the user.
type Notifier interface {
	NotifyFailure(message string)
}

// Confirmer asks the user a yes/no question and blocks for the answer.
type Confirmer interface {
	Confirm(message string) bool
}

// DialogHost owns the dialog's visibility.
type DialogHost interface {
	RequestClose()
}

// Deps are the collaborators a Session needs. Confirmer may be nil when the
// host only uses the two-step RequestCancel/ResolveCancel flow; Logger
// defaults to a no-op logger.
type Deps struct {
	Reader    ContactReader
	Updater   ContactUpdater
	Notifier  Notifier
	Confirmer Confirmer
	Host      DialogHost
	Logger    *zap.Logger
}

var ErrMissingDependency = errors.New("missing editor dependency")

// Session is the lifetime of one open edit dialog.
type Session struct {
	deps        Deps
	log         *zap.Logger
	target      models.Contact
	draft       validation.Draft
	fieldErrors map[validation.Field]string
	lastFailure string
	state       State
	history     []State
}

// Open starts a Session seeded from target.
func Open(target models.Contact, deps Deps) (*Session, error) {
	switch {
	case deps.Reader == nil:
		return nil, fmt.Errorf("%w: contact reader", ErrMissingDependency)
	case deps.Updater == nil:
		return nil, fmt.Errorf("%w: contact updater", ErrMissingDependency)
	case deps.Notifier == nil:
		return nil, fmt.Errorf("%w: notifier", ErrMissingDependency)
	case deps.Host == nil:
		return nil, fmt.Errorf("%w: dialog host", ErrMissingDependency)
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Session{
		deps:   deps,
		log:    log.With(zap.String("contact_id", target.ID)),
		target: target,
		state:  StateEditing,
	}
	s.resetDraft()
	return s, nil
}

func (s *Session) State() State {
	return s.state
}

// Transitions returns every state the session has moved through, in order,
// starting after Editing.
func (s *Session) Transitions() []State {
	out := make([]State, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) Target() models.Contact {
	return s.target
}

func (s *Session) Draft() validation.Draft {
	return s.draft
}

// FieldErrors returns the inline errors of the last rejected submit.
func (s *Session) FieldErrors() map[validation.Field]string {
	out := make(map[validation.Field]string, len(s.fieldErrors))
	for k, v := range s.fieldErrors {
		out[k] = v
	}
	return out
}

// FieldError returns the inline error for f, or "".
func (s *Session) FieldError(f validation.Field) string {
	return s.fieldErrors[f]
}

// LastFailure returns the last collision message sent to the notifier.
func (s *Session) LastFailure() string {
	return s.lastFailure
}

// Dirty reports whether the draft differs from the target contact.
func (s *Session) Dirty() bool {
	return s.draft.Name != s.target.Name || s.draft.Number != s.target.Number
}

func (s *Session) SetName(name string) {
	if s.state != StateEditing {
		return
	}
	s.draft.Name = name
}

func (s *Session) SetNumber(number string) {
	if s.state != StateEditing {
		return
	}
	s.draft.Number = number
}

// Submit runs the draft through validation and the uniqueness check, and on
// success issues the update command and asks the host to close the dialog.
func (s *Session) Submit() Outcome {
	if s.state == StateClosed {
		return OutcomeClosed
	}
	if s.state != StateEditing {
		return OutcomeKept
	}

	s.transition(StateValidating)

	result := validation.ValidateDraft(s.draft)
	s.fieldErrors = result.ByField()
	if first := result.First(); first != nil {
		s.log.Debug("edit rejected by validation",
			zap.String("field", string(first.Field)),
			zap.Stringer("kind", first.Kind))
		s.reject()
		return OutcomeInvalid
	}

	err := validation.CheckUniqueness(s.deps.Reader.Contacts(), s.target.ID, s.draft.Name, s.draft.Number)
	var collision *validation.CollisionError
	if errors.As(err, &collision) {
		s.log.Debug("edit rejected by uniqueness check",
			zap.Stringer("kind", collision.Kind),
			zap.String("other_id", collision.ContactID))
		s.lastFailure = collision.Message
		s.deps.Notifier.NotifyFailure(collision.Message)
		s.reject()
		if collision.Kind == validation.NameCollision {
			return OutcomeNameTaken
		}
		return OutcomeNumberTaken
	}

	s.transition(StateSubmitting)
	cmd := UpdateCommand{
		ID:   s.target.ID,
		Data: UpdateData{Name: s.draft.Name, Number: s.draft.Number},
	}
	s.deps.Updater.UpdateContact(cmd)
	s.log.Info("contact update issued")

	s.draft = validation.Draft{}
	s.fieldErrors = nil
	s.lastFailure = ""
	s.close()
	return OutcomeSubmitted
}

// Cancel asks the Confirmer whether to discard the draft. On yes the dialog
// closes without writing; on no nothing changes.
func (s *Session) Cancel() Outcome {
	if s.state == StateClosed {
		return OutcomeClosed
	}
	if s.deps.Confirmer == nil {
		s.log.Warn("cancel requested without a confirmer")
		return OutcomeKept
	}

	if s.RequestCancel() != StateConfirmingClose {
		return OutcomeKept
	}
	return s.ResolveCancel(s.deps.Confirmer.Confirm(DiscardPrompt))
}

// RequestCancel moves an editing session into StateConfirmingClose, for hosts
// that collect the answer asynchronously.
func (s *Session) RequestCancel() State {
	if s.state == StateEditing {
		s.transition(StateConfirmingClose)
	}
	return s.state
}

// ResolveCancel applies the answer to a pending discard confirmation.
func (s *Session) ResolveCancel(discard bool) Outcome {
	if s.state != StateConfirmingClose {
		if s.state == StateClosed {
			return OutcomeClosed
		}
		return OutcomeKept
	}

	if !discard {
		s.transition(StateEditing)
		return OutcomeKept
	}

	s.log.Debug("edit discarded")
	s.close()
	return OutcomeCancelled
}

func (s *Session) reject() {
	s.transition(StateRejected)
	s.transition(StateEditing)
}

func (s *Session) close() {
	s.transition(StateClosed)
	s.deps.Host.RequestClose()
}

func (s *Session) resetDraft() {
	s.draft = validation.Draft{Name: s.target.Name, Number: s.target.Number}
	s.fieldErrors = nil
}

func (s *Session) transition(to State) {
	s.state = to
	s.history = append(s.history, to)
}
