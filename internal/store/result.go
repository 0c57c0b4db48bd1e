package store

import "github.com/adanyl0v/go-todo-sync/internal/models"

type Op string

const (
	OpRefresh Op = "refresh"
	OpAdd     Op = "add"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
)

// Result is the outcome of a store operation. Err is nil on success;
// otherwise it is the gateway error, e.g. one matching
// gateway.ErrNotFound or gateway.ErrTransport.
type Result struct {
	Op Op
	// Version is the store version right after the operation completed.
	Version uint64
	// Task is the record returned by the gateway on a successful
	// AddTask or UpdateTask.
	Task *models.Task
	Err  error
}

func (r Result) OK() bool {
	return r.Err == nil
}
