// Package insertrecords upserts hand written records, such as depot stops or
// test routes, from YAML files.
package insertrecords

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Load reads every definition from the YAML files under dir. A file may hold
// several documents.
func Load(dir string) ([]*InsertDefinition, error) {
	var definitions []*InsertDefinition

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		log.Debug().Str("path", path).Msg("Loading insert-record file")

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		for {
			var insertDefinition InsertDefinition
			err := decoder.Decode(&insertDefinition)
			if errors.Is(err, io.EOF) {
				break
			} else if err != nil {
				return err
			}

			if err := insertDefinition.Validate(); err != nil {
				return err
			}
			definitions = append(definitions, &insertDefinition)
		}

		return nil
	})

	return definitions, err
}

func Insert(ctx context.Context, dir string) (int, error) {
	definitions, err := Load(dir)
	if err != nil {
		return 0, err
	}

	for _, insertDefinition := range definitions {
		if err := insertDefinition.Upsert(ctx); err != nil {
			return 0, err
		}
	}

	return len(definitions), nil
}
