/*
Package session implements the conversation registry and the inbound dispatcher.

The Manager maps a conversation key to its persisted snapshot and serializes
every operation on one key with a reference-counted mutex (plus an optional
distributed lock when several replicas share a store). Operations on different
keys never wait for each other.

The Dispatcher is the entry point called once per inbound message: it creates
the conversation on first contact, feeds the text to the dialog machine,
persists the result and then delivers the replies. Delivery failures are
logged and reported, never rolled back: the conversation has already advanced.

Conversations are not evicted by the Manager. Stores that support a TTL
(see the redis adapter) are the only way to bound growth.
*/
package session
