package command

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	xslice "github.com/frantjc/x/slice"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Env holds the defaults of the ota command's flags, read from OTA_*
// environment variables after loading an optional .env file.
type Env struct {
	Addr           string        `envconfig:"ADDR" default:":8080"`
	URL            string        `envconfig:"URL"`
	Blob           string        `envconfig:"BLOB" default:"mem://"`
	MaxUploadSize  int64         `envconfig:"MAX_UPLOAD_SIZE" default:"524288000"`
	TTL            time.Duration `envconfig:"TTL" default:"0s"`
	ManifestFormat string        `envconfig:"MANIFEST_FORMAT" default:"xml"`
	Verbose        string        `envconfig:"VERBOSE"`
}

func LoadEnv(filenames ...string) (*Env, error) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	env := &Env{}
	if err := envconfig.Process("ota", env); err != nil {
		return nil, err
	}

	return env, nil
}

func (e *Env) IsVerbose() bool {
	return e.Verbose != "" && xslice.Some([]string{"1", "y", "yes", "true", "t"}, func(s string, _ int) bool {
		return strings.EqualFold(s, e.Verbose)
	})
}
