package book

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a field name to a human readable message. A nil or empty
// map means the value is valid.
type FieldErrors map[string]string

// Error implements error so a FieldErrors value can travel through error
// returns.
func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, fe[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field, keeping the first one.
func (fe FieldErrors) Add(field, message string) {
	if _, exists := fe[field]; !exists {
		fe[field] = message
	}
}

// OrNil returns nil when no field failed.
func (fe FieldErrors) OrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateBook checks the fields a book must carry before it is stored.
func ValidateBook(b Book) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(b.Title) == "" {
		errs.Add("title", "This field is required")
	}
	if b.EndDate != nil && !b.StartDate.IsZero() && b.EndDate.Before(b.StartDate) {
		errs.Add("endDate", "End date must not be before start date")
	}
	return nilIfEmpty(errs)
}

// ValidatePOI checks a POI's required name and category.
func ValidatePOI(p POI) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(p.Name) == "" {
		errs.Add("name", "This field is required")
	}
	if !p.Category.Valid() {
		errs.Add("category", "Must be one of: "+joinCategories())
	}
	if p.ParentID != "" && p.ParentID == p.ID {
		errs.Add("parentId", "A POI cannot be its own parent")
	}
	return nilIfEmpty(errs)
}

// ValidateMemo checks a memo's required title.
func ValidateMemo(m Memo) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(m.Title) == "" {
		errs.Add("title", "This field is required")
	}
	return nilIfEmpty(errs)
}

// ValidateTicket checks a ticket's transport mode and endpoints.
func ValidateTicket(t Ticket) FieldErrors {
	errs := FieldErrors{}
	if !t.Mode.Valid() {
		errs.Add("mode", "Must be one of: "+joinModes())
	}
	if strings.TrimSpace(t.From) == "" {
		errs.Add("from", "This field is required")
	}
	if strings.TrimSpace(t.To) == "" {
		errs.Add("to", "This field is required")
	}
	return nilIfEmpty(errs)
}

func nilIfEmpty(errs FieldErrors) FieldErrors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func joinCategories() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func joinModes() string {
	names := make([]string, len(TransportModes))
	for i, m := range TransportModes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
