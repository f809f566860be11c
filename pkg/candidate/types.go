// Package candidate reads the candidate generator's output: one JSON record
// per OOV surface form, listing every (paradigm, lemma) guess for it.
package candidate

import (
	"bytes"
	"encoding/json"
)

// Form is one surface form generated by a candidate's paradigm.
// A decoded Form re-encodes to exactly the JSON it was read from, so keys
// other than surfaceform and tags survive a round trip.
type Form struct {
	SurfaceForm string   `json:"surfaceform"`
	Tags        []string `json:"tags,omitempty"`

	raw json.RawMessage
}

type formFields Form

// UnmarshalJSON decodes the known fields and keeps the original bytes.
func (f *Form) UnmarshalJSON(data []byte) error {
	var fields formFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*f = Form(fields)
	f.raw = bytes.Clone(data)
	return nil
}

// MarshalJSON returns the bytes the form was decoded from, if any.
func (f Form) MarshalJSON() ([]byte, error) {
	if len(f.raw) > 0 {
		return f.raw, nil
	}
	return json.Marshal(formFields(f))
}

// Candidate is a (paradigm, lemma) guess and the forms it generates.
type Candidate struct {
	Lemma     string `json:"lemma"`
	Paradigm  string `json:"paradigm"`
	Expansion []Form `json:"expansion"`
}

// Reference identifies the known-correct candidate of a record.
type Reference struct {
	Lemma    string `json:"lemma"`
	Paradigm string `json:"paradigm"`
}

// Record is a single input unit.
// CorrectCandidate is nil when no evaluation is requested.
type Record struct {
	SurfaceWord      string      `json:"surfaceword"`
	Candidates       []Candidate `json:"candidates"`
	CorrectCandidate *Reference  `json:"correct_candidate,omitempty"`
}

// Forms returns the distinct surface forms of the expansion, in first-seen order.
func (c Candidate) Forms() []string {
	seen := make(map[string]struct{}, len(c.Expansion))
	forms := make([]string, 0, len(c.Expansion))
	for _, f := range c.Expansion {
		if _, ok := seen[f.SurfaceForm]; ok {
			continue
		}
		seen[f.SurfaceForm] = struct{}{}
		forms = append(forms, f.SurfaceForm)
	}
	return forms
}

// Matches reports whether (lemma, paradigm) is the referenced candidate.
func (r Reference) Matches(lemma, paradigm string) bool {
	return r.Lemma == lemma && r.Paradigm == paradigm
}
