package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/brianmathews/PPTcrunch/internal/model"
	"github.com/brianmathews/PPTcrunch/internal/progress"
)

func TestWizardValidation(t *testing.T) {
	defaults := model.Request{
		Tier:     model.TierBalanced,
		Codec:    model.CodecH264,
		Hardware: model.HWAuto,
		MaxWidth: 1920,
	}

	tests := []struct {
		name    string
		answers []string
		check   func(t *testing.T, r model.Request)
		wantErr bool
	}{
		{
			name:    "empty answers keep defaults",
			answers: []string{"", "", "", ""},
			check: func(t *testing.T, r model.Request) {
				if r != defaults {
					t.Errorf("request = %+v, want defaults %+v", r, defaults)
				}
			},
		},
		{
			name:    "explicit answers override",
			answers: []string{"n", "hevc", "3", "1280"},
			check: func(t *testing.T, r model.Request) {
				if r.Hardware != model.HWOff || r.Codec != model.CodecHEVC ||
					r.Tier != model.TierHighest || r.MaxWidth != 1280 {
					t.Errorf("request = %+v", r)
				}
			},
		},
		{
			name:    "bad tier rejected",
			answers: []string{"", "", "7", ""},
			wantErr: true,
		},
		{
			name:    "bad codec rejected",
			answers: []string{"", "vp9", "", ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := defaults
			var gotErr bool
			for i, q := range buildQuestions(defaults) {
				if err := q.validate(tt.answers[i], &req); err != nil {
					gotErr = true
					break
				}
			}
			if gotErr != tt.wantErr {
				t.Fatalf("validation error = %v, want %v", gotErr, tt.wantErr)
			}
			if !tt.wantErr && tt.check != nil {
				tt.check(t, req)
			}
		})
	}
}

func TestConsoleReporterWarningsAlwaysShown(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, false, false)

	r.Log(progress.Log{Line: "frame=100 fps=30"})
	r.Log(progress.Log{Line: "warning: rewrite failed"})

	out := buf.String()
	if strings.Contains(out, "frame=100") {
		t.Errorf("non-verbose reporter printed tool output: %q", out)
	}
	if !strings.Contains(out, "warning: rewrite failed") {
		t.Errorf("warning suppressed: %q", out)
	}
}

func TestConsoleReporterSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, false, false)
	r.Summary(2, 1, 1)

	out := buf.String()
	for _, want := range []string{"2 compressed", "1 kept", "1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q: %q", want, out)
		}
	}
}
