package serializer

import (
	"github.com/samber/lo"

	"github.com/vyrodovalexey/dynfields/internal/observability"
)

// Filter stages, used as metric labels and in FilterResult.
const (
	StageAllow = "allow"
	StageDeny  = "deny"
)

// FieldFilter narrows a field mapping in place.
type FieldFilter interface {
	// FilterAllow removes every field not named in allowFields. A nil
	// allowFields means no allow-list and removes nothing.
	FilterAllow(fm *FieldMap, allowFields []string) []string

	// FilterDeny removes every field named in denyFields.
	FilterDeny(fm *FieldMap, denyFields []string) []string
}

// FilterResult lists the fields removed by each stage, in mapping order.
type FilterResult struct {
	AllowRemoved []string
	DenyRemoved  []string
}

// Removed returns the total number of removed fields.
func (r FilterResult) Removed() int {
	return len(r.AllowRemoved) + len(r.DenyRemoved)
}

// fieldFilter implements the FieldFilter interface.
type fieldFilter struct {
	logger observability.Logger
}

// NewFieldFilter creates a new FieldFilter instance.
func NewFieldFilter(logger observability.Logger) FieldFilter {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &fieldFilter{
		logger: logger,
	}
}

// FilterAllow implements FieldFilter. Names that are not in the mapping
// are ignored.
func (f *fieldFilter) FilterAllow(fm *FieldMap, allowFields []string) []string {
	if allowFields == nil {
		return nil
	}

	allowed := lo.Keyify(allowFields)

	removed := lo.Filter(fm.Names(), func(name string, _ int) bool {
		_, ok := allowed[name]
		return !ok
	})

	return f.remove(fm, removed, StageAllow)
}

// FilterDeny implements FieldFilter. Names that are not in the mapping
// are ignored.
func (f *fieldFilter) FilterDeny(fm *FieldMap, denyFields []string) []string {
	if len(denyFields) == 0 {
		return nil
	}

	denied := lo.Keyify(denyFields)

	removed := lo.Filter(fm.Names(), func(name string, _ int) bool {
		_, ok := denied[name]
		return ok
	})

	return f.remove(fm, removed, StageDeny)
}

func (f *fieldFilter) remove(fm *FieldMap, names []string, stage string) []string {
	for _, name := range names {
		fm.Remove(name)
		f.logger.Debug("filtering field",
			observability.String("stage", stage),
			observability.String("field", name))
	}
	if len(names) > 0 {
		GetSerializerMetrics().RecordFieldsRemoved(stage, len(names))
	}
	return names
}

// ApplySelection narrows fm to (fields ∩ allow-list) − deny-list. The
// allow-list is applied first, so a name in both lists is removed.
// It never fails.
func ApplySelection(fm *FieldMap, sel FieldSelection) FilterResult {
	return applySelection(NewFieldFilter(nil), fm, sel)
}

func applySelection(filter FieldFilter, fm *FieldMap, sel FieldSelection) FilterResult {
	var result FilterResult
	if fm == nil {
		return result
	}

	result.AllowRemoved = filter.FilterAllow(fm, sel.Fields)
	result.DenyRemoved = filter.FilterDeny(fm, sel.ExcludeFields)

	return result
}
