package runtime

import (
	"github.com/aretw0/pizzabot/pkg/classifier"
	"github.com/aretw0/pizzabot/pkg/domain"
)

// guard decides whether a transition fires for the inbound text.
// A nil guard always fires.
type guard struct {
	name string
	eval func(c *classifier.Classifier, text string) bool
}

// action is a side effect applied, in order, when a transition fires.
type action func(e *Engine, t *turn)

// transition is one row of the dialog table.
type transition struct {
	name    string
	source  domain.StateID
	guard   *guard
	target  domain.StateID
	actions []action
}

// turn carries the working copy of a conversation through one Advance call.
type turn struct {
	conv    *domain.Conversation
	text    string
	replies []domain.Reply
}

var (
	isCancel = &guard{"cancel", func(c *classifier.Classifier, text string) bool {
		return c.MatchesCancel(text)
	}}
	hasSize = &guard{"size", func(c *classifier.Classifier, text string) bool {
		return c.ExtractSize(text) != domain.SizeUnset
	}}
	noSize = &guard{"!size", func(c *classifier.Classifier, text string) bool {
		return c.ExtractSize(text) == domain.SizeUnset
	}}
	hasPayment = &guard{"payment", func(c *classifier.Classifier, text string) bool {
		return c.ExtractPayment(text) != domain.PaymentUnset
	}}
	noPayment = &guard{"!payment", func(c *classifier.Classifier, text string) bool {
		return c.ExtractPayment(text) == domain.PaymentUnset
	}}
	isYes = &guard{"yes", func(c *classifier.Classifier, text string) bool {
		return c.MatchConfirmation(text) == classifier.ConfirmYes
	}}
	isNo = &guard{"no", func(c *classifier.Classifier, text string) bool {
		return c.MatchConfirmation(text) == classifier.ConfirmNo
	}}
	isNeither = &guard{"!yes && !no", func(c *classifier.Classifier, text string) bool {
		return c.MatchConfirmation(text) == classifier.ConfirmNone
	}}
)

// dialogTable is the ordering flow. The cancel row comes first so it
// overrides every state-specific rule.
var dialogTable = []transition{
	{name: "cancel", source: domain.StateAny, guard: isCancel, target: domain.StateStart,
		actions: []action{say((*Prompts).Cancelled)}},

	{name: "begin", source: domain.StateStart, target: domain.StateAskSize,
		actions: []action{resetOrder, say((*Prompts).SizeQuestion)}},

	{name: "size_chosen", source: domain.StateAskSize, guard: hasSize, target: domain.StateAskPayment,
		actions: []action{saveSize, say((*Prompts).PaymentQuestion)}},
	{name: "size_unclear", source: domain.StateAskSize, guard: noSize, target: domain.StateAskSize,
		actions: []action{say((*Prompts).SizeClarification)}},

	{name: "payment_chosen", source: domain.StateAskPayment, guard: hasPayment, target: domain.StateAskConfirm,
		actions: []action{savePayment, sayOrderSummary}},
	{name: "payment_unclear", source: domain.StateAskPayment, guard: noPayment, target: domain.StateAskPayment,
		actions: []action{say((*Prompts).PaymentClarification)}},

	{name: "order_confirmed", source: domain.StateAskConfirm, guard: isYes, target: domain.StateStart,
		actions: []action{say((*Prompts).OrderAccepted)}},
	{name: "order_declined", source: domain.StateAskConfirm, guard: isNo, target: domain.StateStart,
		actions: []action{say((*Prompts).OrderDeclined)}},
	{name: "confirm_unclear", source: domain.StateAskConfirm, guard: isNeither, target: domain.StateAskConfirm,
		actions: []action{say((*Prompts).ConfirmClarification)}},
}

func (t *transition) matches(c *classifier.Classifier, state domain.StateID, text string) bool {
	if t.source != domain.StateAny && t.source != state {
		return false
	}
	return t.guard == nil || t.guard.eval(c, text)
}

func say(render func(*Prompts) string) action {
	return func(e *Engine, t *turn) {
		t.reply(render(e.prompts))
	}
}

func sayOrderSummary(e *Engine, t *turn) {
	t.reply(e.prompts.OrderSummary(t.conv.Order))
}

func resetOrder(_ *Engine, t *turn) {
	t.conv.Order = domain.NewOrder()
}

func saveSize(e *Engine, t *turn) {
	t.conv.Order.Size = e.classifier.ExtractSize(t.text)
}

func savePayment(e *Engine, t *turn) {
	t.conv.Order.Payment = e.classifier.ExtractPayment(t.text)
}

func (t *turn) reply(text string) {
	t.replies = append(t.replies, domain.Reply{Recipient: t.conv.ID, Text: text})
}
