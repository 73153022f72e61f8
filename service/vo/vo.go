package vo

// Corpus is the flattened text of one indexed page subtree.
type Corpus string

// Answer is the result of one question against one indexed page.
type Answer struct {
	// Text is the model's answer, or an error-marked string when the model
	// call failed. Empty when NoContent is set.
	Text string `json:"text"`
	// NoContent marks that the walk produced an empty corpus. Distinct from
	// a query error.
	NoContent bool `json:"noContent,omitempty"`
	// Indexed counts the nested pages and database entries the walk visited.
	Indexed int `json:"indexed"`
}

// Document is the result of one bare indexing run.
type Document struct {
	Corpus  Corpus `json:"corpus"`
	Indexed int    `json:"indexed"`
}
