package navigation

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/navigation/dto"
)

// Fetcher retrieves the flat category list. It never fails: exhausted retries
// degrade to an empty list reported through FetchResult.
type Fetcher interface {
	Fetch(ctx context.Context) dto.FetchResult
}
