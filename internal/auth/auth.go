// Package auth makes the authentication and authorization decision for one
// request. The decision logic is a pure function over verified credentials
// and a policy; the echo adapters in middleware.go bind it to the HTTP
// request lifecycle.
package auth

import (
	"github.com/mkarlsen/kontor/internal/token"
)

// State is the posture of a request while its credentials are evaluated.
// A request moves Unauthenticated -> Authenticated -> Authorized, or lands in
// Rejected. There are no retries; each request is decided independently.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateAuthorized
	StateRejected
)

// Reason explains a rejection.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonMissingCredentials Reason = "authentication required"
	ReasonInvalidCredentials Reason = "invalid or expired credentials"
	ReasonForbidden          Reason = "insufficient permissions"
)

// Result is the terminal outcome for one request.
type Result struct {
	State    State
	Reason   Reason
	Identity *token.Identity
}

// Allowed reports whether the request may proceed to the handler.
func (r Result) Allowed() bool {
	return r.State == StateAuthenticated || r.State == StateAuthorized
}

// Verifier validates a bearer token and returns the identity it carries.
type Verifier interface {
	VerifyAccessToken(tokenString string) (*token.Identity, error)
}

// Authenticate evaluates the bearer credential. An absent credential rejects
// with an authentication-required signal, a failed verification with an
// invalid-credential signal.
func Authenticate(verifier Verifier, bearer string) Result {
	if bearer == "" {
		return Result{State: StateRejected, Reason: ReasonMissingCredentials}
	}

	identity, err := verifier.VerifyAccessToken(bearer)
	if err != nil {
		return Result{State: StateRejected, Reason: ReasonInvalidCredentials}
	}

	return Result{State: StateAuthenticated, Identity: identity}
}

// Authorize narrows an authenticated result with a role check: the identity's
// role set must intersect the allowed set. An empty allowed set authorizes
// any authenticated identity.
func Authorize(result Result, allowedRoles ...string) Result {
	if result.State == StateRejected {
		return result
	}
	if result.Identity == nil {
		return Result{State: StateRejected, Reason: ReasonInvalidCredentials}
	}

	if len(allowedRoles) == 0 {
		result.State = StateAuthorized
		return result
	}

	for _, have := range result.Identity.Roles {
		for _, want := range allowedRoles {
			if have == want {
				result.State = StateAuthorized
				return result
			}
		}
	}

	return Result{State: StateRejected, Reason: ReasonForbidden, Identity: result.Identity}
}
