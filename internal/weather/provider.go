package weather

import (
	"context"
)

// Client abstracts a weather data source. Fetch issues exactly one outbound
// request for the given coordinate and returns the decoded snapshot.
type Client interface {
	Name() string
	Fetch(ctx context.Context, latitude, longitude float64) (Snapshot, error)
}
