// Package services contains the application services of the mcpanel client.
//
// AuthService is the session manager: it owns the signed-in user and, through
// the credential store, the bearer token. The resource services (servers,
// backups, schedules, templates, dashboard) each own one or two resource
// stores and keep them in line with the backend.
//
// Error policy is uniform. Reads (list and detail fetches) never return
// errors: a failed list fetch leaves the collection as it was, a failed
// detail fetch clears the current entity, and the failure is logged. Every
// mutation returns its error so the caller can show it.
package services
