package knowledge

import "github.com/ahrav/go-taskgenie/internal/domain"

// Metadata keys attached to knowledge base documents.
const (
	KeyWorkItemType = "workItemType"
	KeyAreaPath     = "areaPath"
	KeyBusinessUnit = "businessUnit"
	KeySystem       = "system"
)

// ProcessGuidelineArea tags documents that describe the team's agile process.
const ProcessGuidelineArea = "agile-process"

// FilterKind discriminates Filter values.
type FilterKind int

const (
	FilterEquals FilterKind = iota + 1
	FilterAndAll
)

// Filter is a metadata filter over knowledge documents. A nil *Filter
// means no filtering.
type Filter struct {
	Kind FilterKind

	// Equals.
	Key   string
	Value string

	// AndAll.
	All []Filter
}

// Equals matches documents whose metadata key equals value.
func Equals(key, value string) Filter {
	return Filter{Kind: FilterEquals, Key: key, Value: value}
}

// AndAll matches documents satisfying every filter.
func AndAll(filters ...Filter) Filter {
	return Filter{Kind: FilterAndAll, All: filters}
}

// BuildEvaluationFilters restricts evaluation retrieval to process guidance
// for the given type.
func BuildEvaluationFilters(t domain.WorkItemType) *Filter {
	f := AndAll(
		Equals(KeyWorkItemType, string(t)),
		Equals(KeyAreaPath, ProcessGuidelineArea),
	)
	return &f
}

// BuildGenerationFilters combines whichever of type, area path, business unit,
// and system are present: none yields nil, one a single equality, and two or
// more a conjunction.
func BuildGenerationFilters(item *domain.WorkItem) *Filter {
	candidates := []struct{ key, value string }{
		{KeyWorkItemType, string(item.Type)},
		{KeyAreaPath, item.AreaPath},
		{KeyBusinessUnit, item.BusinessUnit},
		{KeySystem, item.System},
	}

	var conds []Filter
	for _, c := range candidates {
		if c.value != "" {
			conds = append(conds, Equals(c.key, c.value))
		}
	}

	switch len(conds) {
	case 0:
		return nil
	case 1:
		return &conds[0]
	default:
		f := AndAll(conds...)
		return &f
	}
}
