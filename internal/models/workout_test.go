package models

import "testing"

// TestTemplateValidate covers the structural invariant checks.
func TestTemplateValidate(t *testing.T) {
	valid := Template{
		Segments: []Segment{
			{Index: 0, DurationS: 60, Label: LabelWarmup},
			{Index: 1, DurationS: 120, Label: LabelSteady},
		},
		Stats: TemplateStats{TotalTimeS: 180},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid template rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{"index gap", func(tpl *Template) { tpl.Segments[1].Index = 2 }},
		{"zero duration", func(tpl *Template) { tpl.Segments[0].DurationS = 0 }},
		{"total mismatch", func(tpl *Template) { tpl.Stats.TotalTimeS = 999 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := valid
			tpl.Segments = append([]Segment(nil), valid.Segments...)
			tt.mutate(&tpl)
			if err := tpl.Validate(); err == nil {
				t.Error("Validate accepted a broken template")
			}
		})
	}
}

// TestSessionStatusTerminal verifies the terminal classification.
func TestSessionStatusTerminal(t *testing.T) {
	for status, want := range map[SessionStatus]bool{
		StatusIdle:      false,
		StatusRunning:   false,
		StatusPaused:    false,
		StatusCompleted: true,
		StatusAborted:   true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}
