// Package guard decides whether a session may visit a route.
package guard

import "github.com/aptosedu/aptpay/types"

// Decision is the result of a guard check.
type Decision struct {
	Allowed  bool
	Redirect string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func RedirectTo(route string) Decision {
	return Decision{Redirect: route}
}

// open routes never require a connected wallet.
var open = map[string]bool{
	types.RouteEntry:          true,
	types.RouteAdmin:          true,
	types.RouteAdminDashboard: true,
}

var known = map[string]bool{
	types.RouteEntry:          true,
	types.RouteHome:           true,
	types.RouteSuccess:        true,
	types.RouteFailed:         true,
	types.RouteAdmin:          true,
	types.RouteAdminDashboard: true,
}

// Check maps a session and a target route to allow-or-redirect.
// Unknown routes always redirect to the entry route. The entry route is
// viewable even when connected; only explicit navigation moves on.
func Check(session types.WalletSession, target string) Decision {
	if !known[target] {
		return RedirectTo(types.RouteEntry)
	}
	if open[target] {
		return Allow()
	}
	if !session.Connected {
		return RedirectTo(types.RouteEntry)
	}
	return Allow()
}
