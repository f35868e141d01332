// Package remote models the identity of a caller that holds power
// resources, and the notification fired when that caller goes away.
//
// A Token is an opaque, comparable handle. Components that keep state on
// behalf of a token register a DeathRecipient; Kill fires every recipient
// exactly once. A ProcessWatcher kills tokens whose owning process has
// exited.
package remote
