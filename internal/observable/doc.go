// Package observable provides owner-scoped values with change notification.
//
// A constructor returns two things: a *Value that can be shared freely for
// reading and subscribing, and a *Control that only the constructing owner
// keeps for Set and Dispose. The Changeable variants put Set on the shared
// handle and keep only the Disposer private.
//
// Each constructor fixes the equality used to drop no-op changes:
//
//	NewRef         pointer identity
//	NewComparable  ==
//	NewEquatable   the type's Equal method
//	NewEnum        the enumeration code
//
// Values are not safe for concurrent use. Handlers run synchronously inside
// Set, in subscription order, and a panic in one aborts the rest of the pass.
// Disposing a value drops every handler, so subscribers never need to
// unsubscribe to be released.
package observable
