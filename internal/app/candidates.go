package app

import (
	"context"

	"github.com/potatomesh/meshdecode/internal/channel"
)

// Candidates lists channel names that hash to h under pskB64. Names seen
// before in the catalog come first, most frequent first, followed by the
// remaining dictionary names.
func (r *Runtime) Candidates(ctx context.Context, h int, pskB64 string) ([]string, error) {
	dictionary := r.Rainbow.Candidates(h, pskB64)
	if r.Catalog == nil || h < 0 || h > 0xff {
		return dictionary, nil
	}
	key, err := channel.ParsePSK(pskB64)
	if err != nil {
		return dictionary, nil
	}

	observed, err := r.Catalog.ListByHash(ctx, uint8(h), channel.KeyLabel(key))
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(observed)+len(dictionary))
	seen := make(map[string]struct{}, cap(out))
	for _, obs := range observed {
		if _, ok := seen[obs.Name]; ok {
			continue
		}
		seen[obs.Name] = struct{}{}
		out = append(out, obs.Name)
	}
	for _, name := range dictionary {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	return out, nil
}
