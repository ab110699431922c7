package router

import (
	"net/url"
	"strings"
)

const (
	Login     = "/login"
	Register  = "/register"
	Dashboard = "/dashboard"
	Servers   = "/servers"
	Templates = "/templates"
	Account   = "/account"
)

// ServerDetail is the route of one server's detail view.
func ServerDetail(id string) string {
	return Servers + "/" + url.PathEscape(id)
}

// IsPublic reports whether route can be shown without a session.
func IsPublic(route string) bool {
	switch routePath(route) {
	case Login, Register:
		return true
	}
	return false
}

func routePath(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}
