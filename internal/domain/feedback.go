package domain

// FeedbackPattern is the aggregated feedback summary for one context key.
// Rates are fractions in [0,1].
type FeedbackPattern struct {
	ContextKey       ContextKey        `json:"contextKey"`
	SampleSize       int               `json:"sampleSize"`
	ModificationRate float64           `json:"modificationRate"`
	DeletionRate     float64           `json:"deletionRate"`
	MissedTaskRate   float64           `json:"missedTaskRate"`
	Insights         []FeedbackInsight `json:"insights,omitempty"`
}

// FeedbackInsight is a qualitative observation derived from feedback history.
type FeedbackInsight struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// FeedbackAction is what a human did with a generated item.
type FeedbackAction string

const (
	FeedbackAccepted FeedbackAction = "accepted"
	FeedbackModified FeedbackAction = "modified"
	FeedbackDeleted  FeedbackAction = "deleted"
	FeedbackMissed   FeedbackAction = "missed"
)

// FeedbackExample is one historical generated item and its outcome.
type FeedbackExample struct {
	Action      FeedbackAction `json:"action"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Reason      string         `json:"reason,omitempty"`
}
