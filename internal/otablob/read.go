package otablob

import (
	"context"
	"net/http"

	"github.com/frantjc/ota/internal/otaerr"
	"github.com/opencontainers/go-digest"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Object is an open stored artifact.
type Object struct {
	*blob.Reader
	Digest digest.Digest
}

// NewReader opens the object at key. A missing object is reported with
// http.StatusNotFound.
func NewReader(ctx context.Context, bucket *blob.Bucket, key string) (*Object, error) {
	attrs, err := bucket.Attributes(ctx, key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, otaerr.HTTPStatusCodeErrorWithMessage(err, http.StatusNotFound, "File not found")
	} else if err != nil {
		return nil, err
	}

	rc, err := bucket.NewReader(ctx, key, nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, otaerr.HTTPStatusCodeErrorWithMessage(err, http.StatusNotFound, "File not found")
	} else if err != nil {
		return nil, err
	}

	obj := &Object{Reader: rc}
	if dgst, err := digest.Parse(attrs.Metadata[MetadataKeyDigest]); err == nil {
		obj.Digest = dgst
	}

	return obj, nil
}
