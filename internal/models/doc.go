// Package models defines the catalog entities exchanged with the musicat REST service.
//
// The package contains two categories of types:
//
// 1. Entities: read models decoded from service responses
//   - [Profile] : The signed-in user, singleton per session
//   - [Artist], [Genre] : Reference data used to populate selections
//   - [Track] : Catalog entry linked to an artist and a genre
//   - [Collection] : Named set of tracks; membership is fetched separately
//   - [AuditEntry], [AdminUser] : Administrator-only listings
//
// 2. Field sets: request bodies validated locally before they are sent
//   - [ArtistFields], [TrackFields], [CollectionFields], [ProfileFields]
//   - [Credentials], [Registration]
//   - [SearchFilters] : Optional search parameters, omitted when empty
//
// Field set validation only checks required-field presence; the service owns every other rule.
package models
