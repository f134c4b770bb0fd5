// Package viewstate models the screen a feature shows as a closed sum type.
// Each variant carries exactly the data it needs, so states like "editing
// with nothing selected" cannot be built.
package viewstate

import "errors"

var ErrNoSelection = errors.New("no entity selected")

type Name string

const (
	NameList   Name = "list"
	NameDetail Name = "detail"
	NameEdit   Name = "edit"
	NameForm   Name = "form"
	NameImport Name = "import"
)

// Mode is implemented only by the variants below.
type Mode[T any] interface {
	Name() Name
	sealed()
}

type Listing[T any] struct{}

type Viewing[T any] struct {
	Entity T
}

type Editing[T any] struct {
	Entity T
	Draft  T
}

type Creating[T any] struct {
	Draft T
}

type Importing[T any] struct{}

func (Listing[T]) Name() Name   { return NameList }
func (Viewing[T]) Name() Name   { return NameDetail }
func (Editing[T]) Name() Name   { return NameEdit }
func (Creating[T]) Name() Name  { return NameForm }
func (Importing[T]) Name() Name { return NameImport }

func (Listing[T]) sealed()   {}
func (Viewing[T]) sealed()   {}
func (Editing[T]) sealed()   {}
func (Creating[T]) sealed()  {}
func (Importing[T]) sealed() {}

// Machine holds the current mode. Transitions happen only through its
// methods, each triggered by an explicit user action.
type Machine[T any] struct {
	mode Mode[T]
}

func NewMachine[T any]() *Machine[T] {
	return &Machine[T]{mode: Listing[T]{}}
}

func (m *Machine[T]) Mode() Mode[T] { return m.mode }

// Selected returns the entity shown in detail or edit mode.
func (m *Machine[T]) Selected() (T, bool) {
	switch v := m.mode.(type) {
	case Viewing[T]:
		return v.Entity, true
	case Editing[T]:
		return v.Entity, true
	}
	var zero T
	return zero, false
}

// Add opens an empty form.
func (m *Machine[T]) Add() {
	var draft T
	m.mode = Creating[T]{Draft: draft}
}

// Select shows one entity.
func (m *Machine[T]) Select(entity T) {
	m.mode = Viewing[T]{Entity: entity}
}

// Edit starts editing the entity currently shown.
func (m *Machine[T]) Edit() error {
	v, ok := m.mode.(Viewing[T])
	if !ok {
		return ErrNoSelection
	}
	m.mode = Editing[T]{Entity: v.Entity, Draft: v.Entity}
	return nil
}

// UpdateDraft replaces the scratch copy in edit or form mode.
func (m *Machine[T]) UpdateDraft(draft T) error {
	switch v := m.mode.(type) {
	case Editing[T]:
		v.Draft = draft
		m.mode = v
	case Creating[T]:
		v.Draft = draft
		m.mode = v
	default:
		return errors.New("no form open")
	}
	return nil
}

// Draft returns the scratch copy in edit or form mode.
func (m *Machine[T]) Draft() (T, bool) {
	switch v := m.mode.(type) {
	case Editing[T]:
		return v.Draft, true
	case Creating[T]:
		return v.Draft, true
	}
	var zero T
	return zero, false
}

func (m *Machine[T]) Import() {
	m.mode = Importing[T]{}
}

// Back returns to the list, dropping the selection and any draft.
func (m *Machine[T]) Back() {
	m.mode = Listing[T]{}
}
