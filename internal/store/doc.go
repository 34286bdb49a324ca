// Package store defines the persistence contracts used by the request
// pipeline and handlers. Implementations live in platform packages
// (see internal/platform/postgres); tests substitute in-memory fakes.
package store
