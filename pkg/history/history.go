// Package history records past ownership lookups.
//
// Two backends are provided: a file-based store for CLI usage and a
// MongoDB-backed store for shared deployments. Entries are small summaries
// (never the full tree) so the history stays cheap to list.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jsterling/ownerchart/pkg/ownership"
)

// Entry summarizes one completed lookup.
type Entry struct {
	ID             string    `json:"id" bson:"_id"`
	CompanyName    string    `json:"company_name" bson:"company_name"`
	RootName       string    `json:"root_name" bson:"root_name"`
	TotalNodes     int       `json:"total_nodes" bson:"total_nodes"`
	ProcessingTime float64   `json:"processing_time" bson:"processing_time"`
	ErrorCount     int       `json:"error_count" bson:"error_count"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// NewEntry builds an Entry from a resolved response.
func NewEntry(companyName string, resp *ownership.Response) Entry {
	e := Entry{
		ID:             uuid.NewString(),
		CompanyName:    companyName,
		TotalNodes:     resp.TotalNodes,
		ProcessingTime: resp.ProcessingTime,
		ErrorCount:     len(resp.Errors),
		CreatedAt:      time.Now().UTC(),
	}
	if resp.RootCompany != nil {
		e.RootName = resp.RootCompany.Name
	}
	return e
}

// Store is the interface for history backends.
type Store interface {
	// Add records an entry.
	Add(ctx context.Context, entry Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
