// Package models defines the entities exchanged with the panel backend.
//
// Every resource entity carries a backend-issued identifier and exposes it
// through EntityID, which is what the resource stores key on. JSON tags follow
// the backend's camelCase wire format.
package models
