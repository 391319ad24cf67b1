package models

// ScoredText is a single text with its compound sentiment score in [-1,1],
// produced by an external per-text scorer.
type ScoredText struct {
	Text     string  `json:"text"`
	Compound float64 `json:"compound"`
}

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SentimentRecord is the aggregate sentiment over the recent window for a
// symbol. Score is in [-1,1], Confidence in [0,1].
type SentimentRecord struct {
	Symbol          string         `json:"symbol"`
	Score           float64        `json:"sentiment_score"`
	Label           string         `json:"sentiment_label"`
	Confidence      float64        `json:"confidence"`
	SourcesAnalyzed int            `json:"sources_analyzed"`
	SourceBreakdown map[string]int `json:"source_breakdown"`
	PositiveCount   int            `json:"positive_count"`
	NegativeCount   int            `json:"negative_count"`
	NeutralCount    int            `json:"neutral_count"`
}
