package filter

import (
	"fmt"
	"slices"

	"github.com/justsurfingit/career-tracker/internal/models"
)

type ContactSort string

const (
	ContactSortDateAdded ContactSort = "date_added"
	ContactSortName      ContactSort = "name"
	ContactSortStrength  ContactSort = "strength"
)

func ParseContactSort(s string) (ContactSort, error) {
	switch ContactSort(s) {
	case "":
		return ContactSortDateAdded, nil
	case ContactSortDateAdded, ContactSortName, ContactSortStrength:
		return ContactSort(s), nil
	}
	return "", fmt.Errorf("unknown contact sort %q", s)
}

// ContactFilter is the complete filter state of the contacts list.
type ContactFilter struct {
	Search           string
	RelationshipType string
	Industry         string
	Category         string
	Tag              string

	StrengthMin *int
	StrengthMax *int

	Sort ContactSort
}

func (f ContactFilter) Key() string {
	lo, hi := "-", "-"
	if f.StrengthMin != nil {
		lo = fmt.Sprint(*f.StrengthMin)
	}
	if f.StrengthMax != nil {
		hi = fmt.Sprint(*f.StrengthMax)
	}
	return fmt.Sprintf("%q|%q|%q|%q|%q|%s|%s|%s",
		f.Search, f.RelationshipType, f.Industry, f.Category, f.Tag, lo, hi, f.Sort)
}

// Contacts runs the contacts pipeline.
func Contacts(contacts []models.Contact, f ContactFilter) []models.Contact {
	return Apply(contacts, f.predicates(), contactComparator(f.Sort))
}

func (f ContactFilter) predicates() []Predicate[models.Contact] {
	var preds []Predicate[models.Contact]

	if f.Search != "" {
		term := f.Search
		preds = append(preds, func(c models.Contact) bool {
			fields := append([]string{c.FirstName, c.LastName, c.Email, c.Company, c.Title, c.Notes}, c.Tags...)
			return ContainsFold(term, fields...)
		})
	}
	if Active(f.RelationshipType) {
		preds = append(preds, categorical(f.RelationshipType, func(c models.Contact) string { return c.RelationshipType }))
	}
	if Active(f.Industry) {
		preds = append(preds, categorical(f.Industry, func(c models.Contact) string { return c.Industry }))
	}
	if Active(f.Category) {
		preds = append(preds, categorical(f.Category, func(c models.Contact) string { return c.Category }))
	}
	if Active(f.Tag) {
		tag := f.Tag
		preds = append(preds, func(c models.Contact) bool { return slices.Contains(c.Tags, tag) })
	}
	if f.StrengthMin != nil {
		lo := *f.StrengthMin
		preds = append(preds, func(c models.Contact) bool { return c.RelationshipStrength >= lo })
	}
	if f.StrengthMax != nil {
		hi := *f.StrengthMax
		preds = append(preds, func(c models.Contact) bool { return c.RelationshipStrength <= hi })
	}
	return preds
}

func contactComparator(key ContactSort) Compare[models.Contact] {
	switch key {
	case ContactSortName:
		return func(a, b models.Contact) int {
			return compareFold(a.FullName(), b.FullName())
		}
	case ContactSortStrength:
		return func(a, b models.Contact) int {
			return b.RelationshipStrength - a.RelationshipStrength
		}
	default:
		return func(a, b models.Contact) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}
