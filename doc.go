// Package authcore is the authentication and abuse-mitigation core of a
// self-hosted user-management module. It owns the credential-exchange
// handshake, login-attempt evaluation, per-origin brute-force lockout,
// post-login identity resolution (including auto-provisioning from federated
// identity providers), and the short-lived security tokens around a session:
// CSRF tokens bound to an authenticated account, persistent remember-me
// tokens, and one-time password-recovery grants.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// the collaborator interfaces ([AccountStore], [TokenStore], [EventSink],
// [Mailer]), and value types. Sensitive-buffer handling and random token
// generation live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Render markup, format localized user-facing text, or route requests.
//     The host translates sentinel errors into responses; [StatusFor] only
//     picks the blocking status code.
//   - Send mail. Recovery flows produce a [Mail] value; delivery belongs to
//     the host's [Mailer].
//   - Log plaintext credentials, at any log level.
//
// # Concurrency contract
//
// The attempt ledger and recovery store are in-process and guarded
// internally. Cipher backends that are not reentrant are serialized behind an
// explicit wrapper; that lock is never held across a call into an
// [AccountStore] or [TokenStore], both of which may block on I/O.
package authcore
