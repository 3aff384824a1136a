package index

import "github.com/starford/raido/internal/models"

// ProjectIndex defines the interface for project index operations.
// Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type ProjectIndex interface {
	UpsertDoc(d DocRow, body string) error
	DeleteDoc(path string) error
	AllChecksums() (map[string]string, error)
	ReplaceGraph(nodes []NodeRow, edges []EdgeRow) error
	ReplaceViolations(vs []models.Violation) error
	GetNode(id string) (*NodeRow, error)
	Trace(id string) (uplinks, downlinks []string, err error)
	Referrers(target string) ([]string, error)
	Graph() ([]NodeRow, []EdgeRow, error)
	Violations() ([]models.Violation, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies ProjectIndex at compile time.
var _ ProjectIndex = (*DB)(nil)
