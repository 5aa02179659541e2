package model

// EnrichmentRequest is one question's entry in the outbound batch sent
// to the text-generation service.
type EnrichmentRequest struct {
	ID        string       `json:"id"`
	Type      QuestionType `json:"type"`
	AIPrompt  string       `json:"aiPrompt"`
	Character string       `json:"character"`
	Word      *RelatedWord `json:"word,omitempty"`
}

// EnrichmentResponse is the expected reply shape from the
// text-generation service.
type EnrichmentResponse struct {
	Success   bool                 `json:"success"`
	Questions []EnrichmentQuestion `json:"questions"`
}

// EnrichmentQuestion carries the generated text for one question.
type EnrichmentQuestion struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}
