package pizzabot_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/pizzabot"
	"github.com/aretw0/pizzabot/pkg/ports"
)

// ExampleBot_Dispatch walks one conversation through a complete order.
func ExampleBot_Dispatch() {
	bot := pizzabot.New()
	ctx := context.Background()

	for _, text := range []string{"Привет", "Большую", "Картой", "Да"} {
		res, err := bot.Dispatch(ctx, "42", text)
		if err != nil {
			log.Fatal(err)
		}
		for _, r := range res.Replies {
			fmt.Println(r.Text)
		}
	}

	// Output:
	// Какую вы хотите пиццу? Большую или маленькую?
	// Как вы будете платить?
	// Вы хотите большую пиццу, оплата - картой?
	// Спасибо за заказ!
}

// ExampleWithSender delivers replies through a transport instead of reading
// them from the result.
func ExampleWithSender() {
	printer := func(ctx context.Context, recipient, text string) error {
		fmt.Printf("[%s] %s\n", recipient, text)
		return nil
	}

	bot := pizzabot.New(pizzabot.WithSender(ports.SenderFunc(printer)))
	if _, err := bot.Dispatch(context.Background(), "7", "Выход"); err != nil {
		log.Fatal(err)
	}

	// Output:
	// [7] Ок, спасибо за обращение!
}
