package ids

import "github.com/segmentio/ksuid"

// New returns a collision-resistant, k-sortable identifier.
func New() string {
	return ksuid.New().String()
}
