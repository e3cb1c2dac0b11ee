// Package event provides synchronous notifiers carrying a fixed source and
// zero to three arguments.
//
// New0..New3 return a *NotifierN that anyone may subscribe to and a
// *TriggerN that the creator keeps to invoke and dispose it. Unlike an
// observable value a notifier stores nothing and never suppresses repeats:
// every Invoke reaches every current listener once.
//
// Listeners are registered by identity. Wrap plain funcs with Func0..Func3,
// or use Observe, which returns the cancel func.
//
// Notifiers are not safe for concurrent use.
package event
