package classifier

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/aretw0/pizzabot/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ErrInvalidVocabulary is returned when a vocabulary definition cannot be used.
var ErrInvalidVocabulary = errors.New("invalid vocabulary")

// SizePattern binds a size to the regular expression that recognizes it.
// Label is the canonical word used in prompts (e.g. "большую").
type SizePattern struct {
	Label   string
	Size    domain.Size
	Pattern *regexp.Regexp
}

// PaymentPattern binds a payment method to the regular expression that recognizes it.
type PaymentPattern struct {
	Label   string
	Method  domain.PaymentMethod
	Pattern *regexp.Regexp
}

// Vocabulary is the closed set of words the dialog understands.
// Pattern lists are evaluated in declaration order; the first match wins.
type Vocabulary struct {
	Sizes    []SizePattern
	Payments []PaymentPattern
	Accept   []string // Confirmation words meaning "yes"
	Decline  []string // Confirmation words meaning "no"
	Cancel   []string // Whole-message words that abort the dialog from any state
}

// DefaultVocabulary returns the built-in Russian vocabulary.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Sizes: []SizePattern{
			{Label: "большую", Size: domain.SizeLarge, Pattern: regexp.MustCompile(`больш[уюаяой]{2,}`)},
			{Label: "маленькую", Size: domain.SizeSmall, Pattern: regexp.MustCompile(`маленьк[уюаяой]{2,}`)},
		},
		Payments: []PaymentPattern{
			{Label: "наличкой", Method: domain.PaymentCash, Pattern: regexp.MustCompile(`наличк[уаойе]{1,2}`)},
			{Label: "картой", Method: domain.PaymentCard, Pattern: regexp.MustCompile(`карт[ыуаойе]{1,2}`)},
		},
		Accept:  []string{"Да", "Подтверждаю", "Согласен"},
		Decline: []string{"Нет", "Не", "Отказываюсь", "Не согласен"},
		Cancel:  []string{"Выход", "Конец", "Отстань"},
	}
}

// vocabularyFile is the on-disk YAML layout of a vocabulary.
type vocabularyFile struct {
	Sizes []struct {
		Label   string `yaml:"label"`
		Size    string `yaml:"size"`
		Pattern string `yaml:"pattern"`
	} `yaml:"sizes"`
	Payments []struct {
		Label   string `yaml:"label"`
		Method  string `yaml:"method"`
		Pattern string `yaml:"pattern"`
	} `yaml:"payments"`
	Confirmation struct {
		Accept  []string `yaml:"accept"`
		Decline []string `yaml:"decline"`
	} `yaml:"confirmation"`
	Cancel []string `yaml:"cancel"`
}

// LoadVocabulary decodes a YAML vocabulary definition and compiles its patterns.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	var file vocabularyFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary: %w", err)
	}

	v := &Vocabulary{
		Accept:  file.Confirmation.Accept,
		Decline: file.Confirmation.Decline,
		Cancel:  file.Cancel,
	}

	for _, s := range file.Sizes {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: size %q: %v", ErrInvalidVocabulary, s.Label, err)
		}
		v.Sizes = append(v.Sizes, SizePattern{Label: s.Label, Size: domain.Size(s.Size), Pattern: re})
	}
	for _, p := range file.Payments {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: payment %q: %v", ErrInvalidVocabulary, p.Label, err)
		}
		v.Payments = append(v.Payments, PaymentPattern{Label: p.Label, Method: domain.PaymentMethod(p.Method), Pattern: re})
	}

	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadVocabularyFile reads a vocabulary from a YAML file.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary: %w", err)
	}
	defer f.Close()
	return LoadVocabulary(f)
}

// Validate checks that every guard has something to match against.
func (v *Vocabulary) Validate() error {
	if len(v.Sizes) == 0 {
		return fmt.Errorf("%w: no sizes", ErrInvalidVocabulary)
	}
	if len(v.Payments) == 0 {
		return fmt.Errorf("%w: no payment methods", ErrInvalidVocabulary)
	}
	if len(v.Accept) == 0 || len(v.Decline) == 0 {
		return fmt.Errorf("%w: confirmation needs accept and decline words", ErrInvalidVocabulary)
	}
	if len(v.Cancel) == 0 {
		return fmt.Errorf("%w: no cancel words", ErrInvalidVocabulary)
	}
	for _, words := range [][]string{v.Accept, v.Decline, v.Cancel} {
		for _, w := range words {
			if strings.TrimSpace(w) == "" {
				return fmt.Errorf("%w: empty keyword", ErrInvalidVocabulary)
			}
		}
	}

	for _, s := range v.Sizes {
		if s.Label == "" || s.Pattern == nil {
			return fmt.Errorf("%w: size entry needs a label and a pattern", ErrInvalidVocabulary)
		}
		if s.Size != domain.SizeSmall && s.Size != domain.SizeLarge {
			return fmt.Errorf("%w: unknown size %q", ErrInvalidVocabulary, s.Size)
		}
	}
	for _, p := range v.Payments {
		if p.Label == "" || p.Pattern == nil {
			return fmt.Errorf("%w: payment entry needs a label and a pattern", ErrInvalidVocabulary)
		}
		if p.Method != domain.PaymentCash && p.Method != domain.PaymentCard {
			return fmt.Errorf("%w: unknown payment method %q", ErrInvalidVocabulary, p.Method)
		}
	}
	return nil
}
