// Package authclient owns the client side of an authenticated session against
// a secrets-vault backend: bearer-token storage, unverified claims decoding,
// the session lifecycle state machine, and route guarding.
//
// Session lifecycle:
//   - SessionStateMachine centralizes the transition graph (bootstrapping,
//     anonymous, logging-in, awaiting/verifying two-factor, authenticated).
//     Every token write goes through the machine so the in-memory AuthState
//     and the persisted token never diverge.
//   - TokenStore abstracts where the token lives (memory, file, cookie via
//     go-router). Stores do no validation; they are storage only.
//
// Trust boundary:
//   - DecodeClaims parses token claims WITHOUT verifying the signature. The
//     decoded expiry is a UX hint so the client can show "logged out"
//     promptly; every authorization decision of consequence is re-checked by
//     the server on each request.
//
// Gateway:
//   - The backend is an external collaborator reached over REST. Gateway is
//     the contract, HTTPGateway the default implementation. Gateway failures
//     come back as rich errors (go-errors); transport failures are normalized
//     to a generic network error so transport details never leak to users.
package authclient
