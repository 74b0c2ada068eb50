package serializer

import (
	"net/url"

	"github.com/samber/lo"

	"github.com/vyrodovalexey/dynfields/internal/util"
)

// Query parameter names recognized by ParseSelection.
const (
	QueryParamFields        = "fields"
	QueryParamExcludeFields = "exclude_fields"
)

// FieldSelection is a per-request allow-list and deny-list of field names.
//
// A nil Fields means no allow-list: every field is allowed. A non-nil,
// empty Fields is an allow-list naming nothing and removes every field.
// ExcludeFields removes nothing when nil or empty.
type FieldSelection struct {
	// Fields restricts the serializer to these names.
	Fields []string `yaml:"fields" json:"fields"`

	// ExcludeFields removes these names. Applied after Fields.
	ExcludeFields []string `yaml:"excludeFields,omitempty" json:"exclude_fields,omitempty"`
}

// HasFields reports whether an allow-list is present.
func (s FieldSelection) HasFields() bool {
	return s.Fields != nil
}

// HasExcludeFields reports whether the deny-list names anything.
func (s FieldSelection) HasExcludeFields() bool {
	return len(s.ExcludeFields) > 0
}

// IsZero reports whether the selection leaves a field mapping unchanged
// regardless of its content.
func (s FieldSelection) IsZero() bool {
	return !s.HasFields() && !s.HasExcludeFields()
}

// Clone returns a deep copy that preserves the nil/empty distinction.
func (s FieldSelection) Clone() FieldSelection {
	return FieldSelection{
		Fields:        cloneNames(s.Fields),
		ExcludeFields: cloneNames(s.ExcludeFields),
	}
}

// Override returns s with each list replaced by the corresponding list of
// other when that list is present.
func (s FieldSelection) Override(other FieldSelection) FieldSelection {
	out := s.Clone()
	if other.Fields != nil {
		out.Fields = cloneNames(other.Fields)
	}
	if other.ExcludeFields != nil {
		out.ExcludeFields = cloneNames(other.ExcludeFields)
	}
	return out
}

// ParseSelection reads a selection from query parameters. Values are
// comma separated and repeated parameters are concatenated. A parameter
// that is present but empty ("?fields=") yields an empty allow-list.
func ParseSelection(values url.Values) FieldSelection {
	var sel FieldSelection

	if raw, ok := values[QueryParamFields]; ok {
		sel.Fields = splitValues(raw)
	}
	if raw, ok := values[QueryParamExcludeFields]; ok {
		sel.ExcludeFields = splitValues(raw)
	}

	return sel
}

// splitValues splits and concatenates comma separated values. The result
// is never nil.
func splitValues(raw []string) []string {
	return append([]string{}, lo.FlatMap(raw, func(v string, _ int) []string {
		return util.SplitList(v)
	})...)
}

func cloneNames(names []string) []string {
	if names == nil {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}
