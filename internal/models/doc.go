// Package models defines the data model for the SoundCloud session client.
//
// [Track] and [User] are immutable values decoded from API responses; identity
// is the numeric id, all other fields may be refreshed without changing it.
// [FavoriteRecord] is the denormalized snapshot persisted by the local
// favorites store.
package models
