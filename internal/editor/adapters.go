package editor

import "rhystmorgan/pbterm/internal/models"

// ReaderFunc adapts a function to ContactReader.
type ReaderFunc func() []models.Contact

func (f ReaderFunc) Contacts() []models.Contact { return f() }

// UpdaterFunc adapts a function to ContactUpdater.
type UpdaterFunc func(cmd UpdateCommand)

func (f UpdaterFunc) UpdateContact(cmd UpdateCommand) { f(cmd) }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) NotifyFailure(message string) { f(message) }

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(message string) bool

func (f ConfirmerFunc) Confirm(message string) bool { return f(message) }

// HostFunc adapts a function to DialogHost.
type HostFunc func()

func (f HostFunc) RequestClose() { f() }
