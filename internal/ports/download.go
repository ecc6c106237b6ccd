package ports

import "context"

type FetcherPort interface {
	Fetch(ctx context.Context, url string, destPath string) (int64, error)
}
