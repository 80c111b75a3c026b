package model

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ledger/internal/common"
)

// CategoryKind tags a category as income or expenditure.
type CategoryKind string

const (
	// KindIncome marks categories whose records count as income.
	KindIncome CategoryKind = "I"
	// KindExpenditure marks categories whose records count as expenditure.
	KindExpenditure CategoryKind = "E"
)

// ParseCategoryKind accepts I/E or income/expenditure in any case.
func ParseCategoryKind(s string) (CategoryKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "I", "INCOME":
		return KindIncome, nil
	case "E", "EXPENDITURE", "EXPENSE":
		return KindExpenditure, nil
	default:
		return "", fmt.Errorf("%w: category kind %q must be I or E", common.ErrValidation, s)
	}
}

// String returns a human readable name for the kind.
func (k CategoryKind) String() string {
	switch k {
	case KindIncome:
		return "income"
	case KindExpenditure:
		return "expenditure"
	default:
		return string(k)
	}
}

// Category groups records. ID is zero until storage assigns one.
type Category struct {
	Name        string
	Description string
	Kind        CategoryKind
	ID          int64
}

// NewCategory validates and builds an uncreated category.
func NewCategory(name, description, kind string) (Category, error) {
	k, err := ParseCategoryKind(kind)
	if err != nil {
		return Category{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: category name cannot be empty", common.ErrValidation)
	}
	return Category{
		Name:        name,
		Description: strings.TrimSpace(description),
		Kind:        k,
	}, nil
}

// Validate checks the invariants NewCategory enforces.
func (c Category) Validate() error {
	_, err := c.Normalized()
	return err
}

// Normalized validates c and returns a copy with the canonical kind tag and
// trimmed text.
func (c Category) Normalized() (Category, error) {
	kind, err := ParseCategoryKind(string(c.Kind))
	if err != nil {
		return Category{}, err
	}
	c.Kind = kind
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	if c.Name == "" {
		return Category{}, fmt.Errorf("%w: category name cannot be empty", common.ErrValidation)
	}
	return c, nil
}

// Table implements Entity.
func (Category) Table() string { return "category" }

// Fields returns id, name, kind, description.
func (c Category) Fields(includeID bool) []any {
	fields := []any{c.Name, string(c.Kind), c.Description}
	if includeID {
		return append([]any{idField(c.ID)}, fields...)
	}
	return fields
}

func (Category) entity() {}

// CategoryFromFields rebuilds a category from id, name, kind, description.
func CategoryFromFields(values []any) (Category, error) {
	if err := checkArity("category", values, 4); err != nil {
		return Category{}, err
	}
	id, err := asInt64(values[0])
	if err != nil {
		return Category{}, fmt.Errorf("category id: %w", err)
	}
	name, err := asString(values[1])
	if err != nil {
		return Category{}, fmt.Errorf("category name: %w", err)
	}
	kindText, err := asString(values[2])
	if err != nil {
		return Category{}, fmt.Errorf("category kind: %w", err)
	}
	kind, err := ParseCategoryKind(kindText)
	if err != nil {
		return Category{}, err
	}
	desc, err := asString(values[3])
	if err != nil {
		return Category{}, fmt.Errorf("category description: %w", err)
	}
	return Category{ID: id, Name: name, Kind: kind, Description: desc}, nil
}

// KindFilter selects categories by kind.
type KindFilter int

const (
	// AllKinds matches every category.
	AllKinds KindFilter = iota
	// IncomeOnly matches income categories.
	IncomeOnly
	// ExpenditureOnly matches expenditure categories.
	ExpenditureOnly
)

// ParseKindFilter maps all/income/expenditure onto a KindFilter.
func ParseKindFilter(s string) (KindFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AllKinds, nil
	case "i", "income":
		return IncomeOnly, nil
	case "e", "expenditure", "expense":
		return ExpenditureOnly, nil
	default:
		return AllKinds, fmt.Errorf("%w: kind filter %q", common.ErrValidation, s)
	}
}

// Matches reports whether a category of kind k passes the filter.
func (f KindFilter) Matches(k CategoryKind) bool {
	switch f {
	case IncomeOnly:
		return k == KindIncome
	case ExpenditureOnly:
		return k == KindExpenditure
	default:
		return true
	}
}
