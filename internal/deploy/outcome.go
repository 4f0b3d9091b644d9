package deploy

import (
	"fmt"
	"strings"
)

// Stage names where a widget's pipeline stopped. The zero value means the
// widget was deployed.
type Stage string

const (
	StageNone              Stage = ""
	StageSourceMissing     Stage = "source_missing"
	StageSpawnFailed       Stage = "spawn_failed"
	StageBuildFailed       Stage = "build_failed"
	StageArtifactMissing   Stage = "artifact_missing"
	StageArtifactAmbiguous Stage = "artifact_ambiguous"
	StageCopyFailed        Stage = "copy_failed"
)

// Outcome is the result of one widget's pipeline.
type Outcome struct {
	Stage         Stage
	ArtifactPath  string   // first destination copy of the artifact
	ArtifactPaths []string // every destination copy, in destination order
	Message       string   // user-facing failure text
	Err           error
}

// OK reports whether the widget was built and deployed.
func (o Outcome) OK() bool {
	return o.Stage == StageNone
}

// WidgetOutcome pairs an Outcome with the widget it belongs to.
type WidgetOutcome struct {
	WidgetID string
	Outcome
}

// Status is the overall result of a batch.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailure Status = "failure"
)

// Report holds one outcome per requested widget, in request order.
type Report struct {
	Succeeded int
	Outcomes  []WidgetOutcome
}

func (r *Report) add(id string, o Outcome) {
	if o.OK() {
		r.Succeeded++
	}
	r.Outcomes = append(r.Outcomes, WidgetOutcome{WidgetID: id, Outcome: o})
}

// Failed returns the number of widgets that did not deploy.
func (r *Report) Failed() int {
	return len(r.Outcomes) - r.Succeeded
}

// Failures returns the failed outcomes in request order.
func (r *Report) Failures() []WidgetOutcome {
	var out []WidgetOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Status classifies the batch. An empty batch is a success.
func (r *Report) Status() Status {
	switch {
	case r.Failed() == 0:
		return StatusSuccess
	case r.Succeeded > 0:
		return StatusPartial
	default:
		return StatusFailure
	}
}

// Summary renders the batch result for display.
func (r *Report) Summary() string {
	switch r.Status() {
	case StatusSuccess:
		return fmt.Sprintf("Successfully built and deployed %d widget(s)", r.Succeeded)
	case StatusPartial:
		return fmt.Sprintf("Partially successful: %d widget(s) completed, %d failed:\n%s",
			r.Succeeded, r.Failed(), r.failureText())
	default:
		return "All builds failed:\n" + r.failureText()
	}
}

func (r *Report) failureText() string {
	failures := r.Failures()
	msgs := make([]string, 0, len(failures))
	for _, f := range failures {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "\n")
}

// Err returns a *BatchError when no widget deployed, nil otherwise.
// A partial batch is not an error.
func (r *Report) Err() error {
	if r.Status() != StatusFailure {
		return nil
	}
	return &BatchError{Report: r}
}

// BatchError is returned for a batch in which every widget failed.
type BatchError struct {
	Report *Report
}

func (e *BatchError) Error() string {
	return e.Report.Summary()
}

// PreconditionError means the batch was not attempted at all.
type PreconditionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("Destination path %s: %s", e.Reason, e.Path)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}
