package domain

// TransitionInfo describes one row of the dialog transition table.
// Rows are evaluated in Index order; the first satisfied guard wins.
type TransitionInfo struct {
	Index  int     `json:"index"`
	Name   string  `json:"name"`
	Source StateID `json:"source"`
	Guard  string  `json:"guard,omitempty"` // Empty means "always"
	Target StateID `json:"target"`
}

// Step records the transition fired by one inbound text.
type Step struct {
	Rule string  `json:"rule"`
	From StateID `json:"from"`
	To   StateID `json:"to"`
}

// Outcome is the result of feeding one inbound text into the engine.
type Outcome struct {
	Conversation *Conversation `json:"conversation"`
	Replies      []Reply       `json:"replies"`
	Step         Step          `json:"step"`
}
