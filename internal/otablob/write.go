package otablob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/frantjc/ota"
	"github.com/opencontainers/go-digest"
	"gocloud.dev/blob"
)

// MetadataKeyDigest holds the content digest of an object, used as its ETag.
const MetadataKeyDigest = "digest"

// Write stores b at key, recording its digest alongside it.
func Write(ctx context.Context, bucket *blob.Bucket, key, contentType string, b []byte) (digest.Digest, error) {
	dgst := digest.FromBytes(b)

	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			MetadataKeyDigest: dgst.String(),
		},
	})
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(w, bytes.NewReader(b)); err != nil {
		_ = w.Close()
		return "", err
	}

	if err = w.Close(); err != nil {
		return "", err
	}

	return dgst, nil
}

// Artifact is a single object to be written by WriteArtifacts.
type Artifact struct {
	Key         string
	ContentType string
	Data        []byte
}

// WriteArtifacts writes each artifact in order. If any write fails, the
// artifacts already written are deleted again so that a failed upload
// leaves nothing behind.
func WriteArtifacts(ctx context.Context, bucket *blob.Bucket, artifacts ...Artifact) error {
	log := ota.LoggerFrom(ctx)

	for i, artifact := range artifacts {
		dgst, err := Write(ctx, bucket, artifact.Key, artifact.ContentType, artifact.Data)
		if err != nil {
			errs := []error{fmt.Errorf("write %s: %w", artifact.Key, err)}
			for _, written := range artifacts[:i] {
				if err := bucket.Delete(ctx, written.Key); err != nil {
					errs = append(errs, fmt.Errorf("delete %s: %w", written.Key, err))
				}
			}

			return errors.Join(errs...)
		}

		log.V(1).Info("wrote artifact", "key", artifact.Key, "digest", dgst, "size", len(artifact.Data))
	}

	return nil
}
