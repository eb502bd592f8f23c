package logic

import "strconv"

// TraceStep records one precedence step evaluated while resolving content.
type TraceStep struct {
	Stage     string            `json:"stage"`
	Matched   bool              `json:"matched"`
	PatternID string            `json:"pattern_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// ResolutionTrace captures the ordered list of steps performed by the resolver.
type ResolutionTrace struct {
	Steps []TraceStep `json:"steps"`
}

// AddStep appends a trace entry for the given stage.
func (t *ResolutionTrace) AddStep(stage string, matched bool, patternID string) {
	t.AddStepWithDetails(stage, matched, patternID, nil)
}

// AddStepWithDetails appends a trace entry with additional details about the lookup.
func (t *ResolutionTrace) AddStepWithDetails(stage string, matched bool, patternID string, details map[string]string) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, TraceStep{Stage: stage, Matched: matched, PatternID: patternID, Details: details})
}

// Stages returns the stage names in evaluation order.
func (t *ResolutionTrace) Stages() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.Steps))
	for i, s := range t.Steps {
		out[i] = s.Stage
	}
	return out
}

func indexDetails(index, count int) map[string]string {
	return map[string]string{
		"index":         strconv.Itoa(index),
		"pattern_count": strconv.Itoa(count),
	}
}
