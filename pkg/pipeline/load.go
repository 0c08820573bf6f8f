package pipeline

import (
	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/scene"
)

// Load reads and validates the scene named by opts. In-memory Data wins
// over Input.
func Load(opts Options) (*Scene, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	if len(opts.Data) > 0 {
		format, _ := scene.ParseFormat(opts.DocFormat)
		doc, err := scene.Decode(opts.Data, format)
		if err != nil {
			return nil, err
		}
		source := opts.Input
		if source == "" {
			source = "<" + string(format) + ">"
		}
		return &Scene{Doc: doc, Source: source, Hash: cache.Hash(opts.Data)}, nil
	}

	doc, data, err := scene.Import(opts.Input)
	if err != nil {
		return nil, err
	}
	return &Scene{Doc: doc, Source: opts.Input, Hash: cache.Hash(data)}, nil
}
