package pizzabot

// Version is the released version, overridden at build time with
// -ldflags "-X github.com/aretw0/pizzabot.Version=...".
var Version = "0.4.0"
