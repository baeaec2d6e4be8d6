package domain

// ReturnToParam is the query parameter carrying the originally requested path.
const ReturnToParam = "redirectURL"

// RedirectDecision is the outcome of a protected navigation.
// The zero value is not meaningful; build it with Allow or Redirect.
type RedirectDecision struct {
	Allowed  bool
	Target   string
	ReturnTo string
	Reason   string
}

// Allow lets the navigation proceed.
func Allow() RedirectDecision {
	return RedirectDecision{Allowed: true}
}

// Redirect sends the actor to target, carrying returnTo as the query string.
func Redirect(target, returnTo, reason string) RedirectDecision {
	return RedirectDecision{Target: target, ReturnTo: returnTo, Reason: reason}
}

// URL renders the redirect location. The query string is omitted entirely
// when there is nothing to return to.
func (d RedirectDecision) URL() string {
	if d.Allowed {
		return ""
	}
	if d.ReturnTo == "" {
		return d.Target
	}
	return d.Target + "?" + d.ReturnTo
}
