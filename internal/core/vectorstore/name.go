// Package vectorstore provides the per-account vector collection manager
// with two interchangeable backends: an embedded chromem-go store and a
// Postgres pgvector store. The core pipelines are identical against either.
package vectorstore

// CollectionName derives an account's collection name deterministically from
// its unique id. No side lookup table exists; the name is the identity.
func CollectionName(accountUniqueID string) string {
	return "collection-" + accountUniqueID
}
