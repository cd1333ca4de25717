package fallback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abiiranathan/this-fallback/analyzer/syntax"
	"github.com/pkg/errors"
)

// DeprecationID identifies the only deprecation this pass reports.
const DeprecationID = "this-property-fallback"

// DeprecationOptions is the metadata passed to the runtime deprecation reporter.
type DeprecationOptions struct {
	ID    string `json:"id"`
	Until string `json:"until"`
	For   string `json:"for"`
	URL   string `json:"url"`
	Since struct {
		Available string `json:"available"`
	} `json:"since"`
}

// ThisPropertyFallbackOptions returns the options of DeprecationID.
func ThisPropertyFallbackOptions() DeprecationOptions {
	opts := DeprecationOptions{
		ID:    DeprecationID,
		Until: "n/a",
		For:   "ember-this-fallback",
		URL:   "https://deprecations.emberjs.com/v3.x#toc_this-property-fallback",
	}
	opts.Since.Available = "0.2.0"
	return opts
}

// Deprecation is one recorded legacy lookup. It encodes as the
// [message, test, options] argument list of the runtime reporter.
type Deprecation struct {
	Message string
	Test    bool
	Options DeprecationOptions
}

// MarshalJSON implements json.Marshaler.
func (d Deprecation) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{d.Message, d.Test, d.Options})
}

// Recorder collects the deprecations of one template.
//
// Every Record call adds an entry; repeated heads are not merged so the
// runtime reports how many times a fallback was used.
type Recorder struct {
	module  string
	records []Deprecation
}

// NewRecorder returns an empty recorder for the template named module.
func NewRecorder(module string) *Recorder {
	return &Recorder{module: module}
}

// Record adds a deprecation for head.
func (r *Recorder) Record(head string) {
	r.records = append(r.records, r.deprecationFor(head))
}

// Len returns the number of pending records.
func (r *Recorder) Len() int { return len(r.records) }

func (r *Recorder) deprecationFor(head string) Deprecation {
	return Deprecation{
		Message: fmt.Sprintf(
			"The `%s` property path was used in the `%s` template without using `this`. "+
				"This fallback behavior has been deprecated, all properties must be looked up on `this` "+
				"when used in the template: {{this.%s}}",
			head, r.module, head,
		),
		Test:    false,
		Options: ThisPropertyFallbackOptions(),
	}
}

// Flush appends {{helper "<records as JSON>"}} to the template body and
// empties the recorder. It does nothing when no record is pending.
//
// helper is only called when something is flushed, so callers can bind the
// runtime helper lazily.
//
// Returns: the flushed records.
func (r *Recorder) Flush(t *syntax.Template, helper func() string) ([]Deprecation, error) {
	if len(r.records) == 0 {
		return nil, nil
	}
	payload, err := encodeRecords(r.records)
	if err != nil {
		return nil, errors.Wrap(err, "encode deprecations")
	}
	t.Body = append(t.Body, syntax.NewMustache(
		syntax.NewPath(helper()),
		[]syntax.Expression{syntax.NewString(payload)},
		nil,
	))
	flushed := r.records
	r.records = nil
	return flushed, nil
}

func encodeRecords(records []Deprecation) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
