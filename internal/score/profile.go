package score

import (
	"bytes"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// profileFile is the on-disk shape of a scoring profile.
type profileFile struct {
	Weights Weights `toml:"weights"`
}

// LoadProfile reads a scoring profile TOML file and returns the validated
// weights. Fields omitted from the file keep their Default (or Percentile,
// when the file selects that scheme) values, so a profile only needs to
// state what it changes. Unknown fields are rejected so a misspelled weight
// key cannot silently fall back to its default.
func LoadProfile(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("score: read profile %s: %w", path, err)
	}

	// Peek at the scheme first so the right base defaults apply.
	var peek profileFile
	if err := strictDecode(data, &peek); err != nil {
		return Weights{}, fmt.Errorf("score: parse profile %s: %w", path, err)
	}

	base := Default()
	if peek.Weights.Scheme == SchemePercentile {
		base = Percentile()
	}
	pf := profileFile{Weights: base}
	if err := strictDecode(data, &pf); err != nil {
		return Weights{}, fmt.Errorf("score: parse profile %s: %w", path, err)
	}
	if err := pf.Weights.Validate(); err != nil {
		return Weights{}, fmt.Errorf("score: profile %s: %w", path, err)
	}
	return pf.Weights, nil
}

func strictDecode(data []byte, v any) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
