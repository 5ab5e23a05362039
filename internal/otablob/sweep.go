package otablob

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/frantjc/ota"
	"gocloud.dev/blob"
)

// Sweep deletes every upload and manifest last modified before
// now minus ttl, returning how many objects it deleted.
func Sweep(ctx context.Context, bucket *blob.Bucket, ttl time.Duration, now time.Time) (int, error) {
	var (
		log     = ota.LoggerFrom(ctx)
		cutoff  = now.Add(-ttl)
		deleted = 0
	)

	for _, prefix := range []string{UploadsPrefix, ManifestsPrefix} {
		iter := bucket.List(&blob.ListOptions{Prefix: prefix})
		for {
			obj, err := iter.Next(ctx)
			if errors.Is(err, io.EOF) {
				break
			} else if err != nil {
				return deleted, err
			}

			if obj.IsDir || !obj.ModTime.Before(cutoff) {
				continue
			}

			if err = bucket.Delete(ctx, obj.Key); err != nil {
				return deleted, err
			}

			log.V(1).Info("swept expired artifact", "key", obj.Key, "modTime", obj.ModTime)
			deleted++
		}
	}

	return deleted, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, bucket *blob.Bucket, ttl, interval time.Duration) error {
	var (
		log    = ota.LoggerFrom(ctx)
		ticker = time.NewTicker(interval)
	)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			deleted, err := Sweep(ctx, bucket, ttl, now)
			if err != nil {
				log.Error(err, "sweep failed")
				continue
			}

			if deleted > 0 {
				log.Info("swept expired artifacts", "count", deleted)
			}
		}
	}
}
