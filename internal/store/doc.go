// Package store holds the client-side mirror of the remote task
// collection.
//
// A Store is shared by every consumer of the process. Consumers read
// it through copies (Tasks, Snapshot, Subscribe) and change it only
// through Refresh, AddTask, UpdateTask and DeleteTask. Every operation
// is confirm-then-apply: the local collection changes only after the
// gateway reported success, so a failed operation leaves it exactly as
// it was and only sets the operation-specific message returned by Err.
//
// Operations are not serialized. Two overlapping operations run their
// remote calls concurrently and their results are applied in the order
// the responses arrive, each against the collection current at that
// moment.
package store
