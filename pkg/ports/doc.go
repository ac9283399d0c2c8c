/*
Package ports defines the driven ports (interfaces) of the ordering bot.

These interfaces decouple the dialog core from external implementations, allowing
the same engine to run behind different transports and storage backends.

# Key Interfaces

  - Machine: the dialog state machine (implemented by internal/runtime).
  - ConversationStore: persists and loads conversation snapshots.
  - DistributedLocker: serializes access to one conversation across replicas.
  - Sender: delivers a reply text to a recipient.
*/
package ports
