package core

import (
	"encoding/json"
	"io"
)

// MarshalVerdicts pretty-prints verdicts as JSON for humans or pipelines.
func MarshalVerdicts(w io.Writer, verdicts []Verdict) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(verdicts)
}

// UnmarshalVerdicts decodes verdict JSON, useful for ingestion tests.
func UnmarshalVerdicts(r io.Reader) ([]Verdict, error) {
	var vs []Verdict
	if err := json.NewDecoder(r).Decode(&vs); err != nil {
		return nil, err
	}
	return vs, nil
}
