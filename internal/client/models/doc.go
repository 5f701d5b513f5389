// Package models defines the records persisted in the local store and
// exchanged with the backend: User, List and Card, the Pdf and Comment value
// objects embedded in a Card, the per-entity patch structs used for partial
// updates, and the outbox item that tracks pending pushes.
//
// JSON tags are the backend's wire names and must not change.
package models
