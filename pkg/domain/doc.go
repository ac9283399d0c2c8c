/*
Package domain contains the core domain models of the pizza ordering dialog.

It defines the conversation snapshot, the order being collected, the dialog
states and the replies the engine asks the host to deliver. This package is
kept pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Conversation: the runtime snapshot of one exchange (State, Order, cycle counter).
  - Order: the size and payment method accumulated during the current cycle.
  - StateID: one of start, ask_size, ask_payment, ask_confirm.
  - Reply: a text the host must deliver to the conversation's recipient.
  - TransitionInfo: a read-only description of one row of the transition table.
*/
package domain
