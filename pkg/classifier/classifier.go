package classifier

import (
	"strings"
	"sync"

	"github.com/aretw0/pizzabot/pkg/domain"
)

// Confirmation is the answer to the order summary question.
type Confirmation int

const (
	ConfirmNone Confirmation = iota
	ConfirmYes
	ConfirmNo
)

func (c Confirmation) String() string {
	switch c {
	case ConfirmYes:
		return "yes"
	case ConfirmNo:
		return "no"
	}
	return "none"
}

// Classifier evaluates the dialog guards against a Vocabulary.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	vocab   *Vocabulary
	accept  []string
	decline []string
	cancel  []string
}

// New creates a Classifier over v. Keywords are lower-cased once here.
func New(v *Vocabulary) *Classifier {
	return &Classifier{
		vocab:   v,
		accept:  lowerAll(v.Accept),
		decline: lowerAll(v.Decline),
		cancel:  lowerAll(v.Cancel),
	}
}

var defaultClassifier = sync.OnceValue(func() *Classifier {
	return New(DefaultVocabulary())
})

// Default returns the shared Classifier built from DefaultVocabulary.
func Default() *Classifier {
	return defaultClassifier()
}

// MatchesCancel reports whether the whole trimmed message is a cancel word.
func (c *Classifier) MatchesCancel(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}
	for _, w := range c.cancel {
		if t == w {
			return true
		}
	}
	return false
}

// MatchConfirmation looks for accept words first, then decline words.
// A message containing both resolves to ConfirmYes.
func (c *Classifier) MatchConfirmation(text string) Confirmation {
	t := strings.ToLower(text)
	if containsAny(t, c.accept) {
		return ConfirmYes
	}
	if containsAny(t, c.decline) {
		return ConfirmNo
	}
	return ConfirmNone
}

// ExtractSize returns the first declared size whose pattern occurs in text,
// or domain.SizeUnset.
func (c *Classifier) ExtractSize(text string) domain.Size {
	t := strings.ToLower(text)
	for _, s := range c.vocab.Sizes {
		if s.Pattern.MatchString(t) {
			return s.Size
		}
	}
	return domain.SizeUnset
}

// ExtractPayment returns the first declared payment method whose pattern
// occurs in text, or domain.PaymentUnset.
func (c *Classifier) ExtractPayment(text string) domain.PaymentMethod {
	t := strings.ToLower(text)
	for _, p := range c.vocab.Payments {
		if p.Pattern.MatchString(t) {
			return p.Method
		}
	}
	return domain.PaymentUnset
}

// SizeLabel returns the prompt word for a size.
func (c *Classifier) SizeLabel(size domain.Size) string {
	for _, s := range c.vocab.Sizes {
		if s.Size == size {
			return s.Label
		}
	}
	return string(size)
}

// PaymentLabel returns the prompt word for a payment method.
func (c *Classifier) PaymentLabel(method domain.PaymentMethod) string {
	for _, p := range c.vocab.Payments {
		if p.Method == method {
			return p.Label
		}
	}
	return string(method)
}

// SizeLabels lists the size words in declaration order.
func (c *Classifier) SizeLabels() []string {
	out := make([]string, 0, len(c.vocab.Sizes))
	for _, s := range c.vocab.Sizes {
		out = append(out, s.Label)
	}
	return out
}

// PaymentLabels lists the payment words in declaration order.
func (c *Classifier) PaymentLabels() []string {
	out := make([]string, 0, len(c.vocab.Payments))
	for _, p := range c.vocab.Payments {
		out = append(out, p.Label)
	}
	return out
}

// ConfirmationWords lists accept words followed by decline words, as written in the vocabulary.
func (c *Classifier) ConfirmationWords() []string {
	out := make([]string, 0, len(c.vocab.Accept)+len(c.vocab.Decline))
	out = append(out, c.vocab.Accept...)
	return append(out, c.vocab.Decline...)
}

// CancelWords lists the cancel words as written in the vocabulary.
func (c *Classifier) CancelWords() []string {
	return append([]string(nil), c.vocab.Cancel...)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToLower(w))
	}
	return out
}
