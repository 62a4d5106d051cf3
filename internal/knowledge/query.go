// Package knowledge builds retrieval queries for work items and fetches
// supporting documents from the knowledge base. Retrieval is best-effort:
// failures degrade to an empty document list.
package knowledge

import (
	"fmt"
	"strings"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

// BuildEvaluationQuery frames a search for process guidance that helps judge
// whether item is well-defined. The governing criteria label is always
// present; its value only when populated.
func BuildEvaluationQuery(item *domain.WorkItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find relevant information about the %s process and guidelines that would help evaluate the following %s is well-defined:\n",
		item.Type, item.Type)
	fmt.Fprintf(&b, "    - Title: %s\n", item.Title)
	fmt.Fprintf(&b, "    - Description: %s\n", item.Description)

	label := domain.CriteriaSuccess
	if item.Type.IsBacklogItem() {
		label = domain.CriteriaAcceptance
	}
	fmt.Fprintf(&b, "    - %s: %s", label, item.Criteria())
	return b.String()
}

// BuildGenerationQuery frames a search for technical and business context
// that helps break item down. Criteria are included only when populated.
func BuildGenerationQuery(item *domain.WorkItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find relevant information to help break down the %s (such as technical details, application architecture, business context, etc.) for the following %s:\n",
		item.Type, item.Type)
	fmt.Fprintf(&b, "    - Title: %s\n", item.Title)
	fmt.Fprintf(&b, "    - Description: %s", item.Description)
	if c := item.Criteria(); c != "" {
		fmt.Fprintf(&b, "\n    - %s: %s", item.CriteriaKind(), c)
	}
	return b.String()
}
