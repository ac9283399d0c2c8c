package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/pizzabot/pkg/classifier"
	"github.com/aretw0/pizzabot/pkg/domain"
)

// Prompts renders the scripted replies of the dialog.
// Clarification texts enumerate the vocabulary so they stay in sync with the guards.
type Prompts struct {
	c *classifier.Classifier
}

// NewPrompts creates the reply renderer for a classifier's vocabulary.
func NewPrompts(c *classifier.Classifier) *Prompts {
	return &Prompts{c: c}
}

func (p *Prompts) SizeQuestion() string {
	return "Какую вы хотите пиццу? Большую или маленькую?"
}

func (p *Prompts) SizeClarification() string {
	return "Я не совсем понимаю, для указания размера используйте слова: " + quoteList(p.c.SizeLabels())
}

func (p *Prompts) PaymentQuestion() string {
	return "Как вы будете платить?"
}

func (p *Prompts) PaymentClarification() string {
	return "Я не совсем понимаю, для указания способа оплаты используйте слова: " + quoteList(p.c.PaymentLabels())
}

// OrderSummary asks for confirmation. Unchosen fields show their defaults.
func (p *Prompts) OrderSummary(o domain.Order) string {
	return fmt.Sprintf("Вы хотите %s пиццу, оплата - %s?", p.c.SizeLabel(o.Size), p.c.PaymentLabel(o.Payment))
}

func (p *Prompts) ConfirmClarification() string {
	return "Я не совсем понимаю, для подтверждения/отмены заказа используйте слова: " + quoteList(p.c.ConfirmationWords())
}

func (p *Prompts) OrderAccepted() string {
	return "Спасибо за заказ!"
}

func (p *Prompts) OrderDeclined() string {
	return fmt.Sprintf("Хорошо, напишите еще раз если захотите составить заказ заново или напишите %q чтобы закончить диалог!", p.exitWord())
}

func (p *Prompts) Cancelled() string {
	return "Ок, спасибо за обращение!"
}

// Greeting is sent by transports that support an explicit start command.
func (p *Prompts) Greeting() string {
	return fmt.Sprintf("Привет! Напишите любой текст, чтобы начать заказывать пиццу. Если захотите прервать диалог напишите %q", p.exitWord())
}

// TextOnly is sent by transports when a message carries no text.
func (p *Prompts) TextOnly() string {
	return "Я понимаю только текстовые сообщения!"
}

func (p *Prompts) exitWord() string {
	if words := p.c.CancelWords(); len(words) > 0 {
		return words[0]
	}
	return ""
}

// quoteList renders ["a", "b"].
func quoteList(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, `"`+w+`"`)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
