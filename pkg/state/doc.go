// Package state defines the entity types shared by the canonical store,
// the event bus payloads, and the synchronization service: cart lines,
// the user profile, orders, and navigation.
//
// The types here are plain data. Ownership of the live values belongs to
// the canonical store (package store); everything else holds copies.
package state
