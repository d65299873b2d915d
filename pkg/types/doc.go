// Package types defines the entity types, request types, store interfaces and
// failure taxonomy shared by the tasktree store, engine, HTTP adapter and CLI.
//
// Lists own forests of tasks. The store is reached through a Cupboard, which
// runs callbacks inside a transaction (Tx); a Tx exposes one table per entity.
package types
