// Package furrow is the Composition Root for the furrow CRM data layer.
//
// It connects the CRM entities (Domain Layer) with the storage adapters
// (Persistence Layer) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// furrow keeps a small sales pipeline (clients, deals, tasks and notes) as a
// handful of independent named collections. Each collection is a whole JSON
// document under one key, so any key-value medium can hold a workspace:
// a directory of files, a SQLite file, a Redis instance or plain memory.
//
// Features:
//
//   - **Injectable Storage**: Every collection goes through `core.Storage`.
//   - **CSV Import/Export**: Standard quoting, lenient parsing, append-only merge.
//   - **Kanban Pipeline**: Deals grouped and reordered by stage.
//   - **Exact Money**: Values are decimals, never floats.
//   - **Extensible**: New backends only implement Load, Save, Delete and Initialize.
//
// Usage:
//
//	ws, err := furrow.Open(ctx, "./.furrow",
//		furrow.WithAdapter("sqlite"),
//		furrow.WithLogger(logger),
//	)
//
//	client, err := ws.Clients.Add(ctx, crm.Client{Name: "Acme", Email: "ops@acme.test"})
package furrow
