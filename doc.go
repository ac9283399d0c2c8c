/*
Package pizzabot drives a scripted pizza-ordering dialog over a messaging
transport.

Each conversation runs its own copy of a small state machine:

	start -> ask_size -> ask_payment -> ask_confirm -> start

Guards classify free text with a closed Russian vocabulary (sizes, payment
methods, yes/no, exit words). Every inbound text fires exactly one
transition and yields zero or more scripted replies.

# Usage

	bot := pizzabot.New(
		pizzabot.WithSender(telegramClient),
		pizzabot.WithLogger(logger),
	)

	res, err := bot.Dispatch(ctx, "42", "Привет")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Conversation.State) // ask_size

Conversations live in an in-memory store by default. Use WithStore to share
them between replicas (see pkg/adapters/redis and pkg/adapters/dynamodb) and
WithLocker to serialize one conversation across processes.
*/
package pizzabot
