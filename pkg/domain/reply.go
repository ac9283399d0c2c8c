package domain

// Reply is an outbound text the engine asks the host to deliver.
type Reply struct {
	// Recipient is the conversation key the text is addressed to.
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}
