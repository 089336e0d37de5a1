package profile

import (
	"errors"
	"testing"
)

func TestResumeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resume  ResumeProfile
		wantErr error
	}{
		{
			name:    "empty resume",
			resume:  ResumeProfile{},
			wantErr: ErrEmptyResume,
		},
		{
			name:    "whitespace raw text only",
			resume:  ResumeProfile{RawText: "   \n"},
			wantErr: ErrEmptyResume,
		},
		{
			name:   "raw text present",
			resume: ResumeProfile{RawText: "ten years of go"},
		},
		{
			name:   "skills only",
			resume: ResumeProfile{Skills: []string{"go"}},
		},
		{
			name: "experience only",
			resume: ResumeProfile{Experience: []ExperienceEntry{
				{Title: "Backend Engineer", DateRange: "2019-2023"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.resume.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestJobValidate(t *testing.T) {
	t.Parallel()

	empty := JobProfile{}
	if err := empty.Validate(); !errors.Is(err, ErrEmptyJob) {
		t.Fatalf("expected ErrEmptyJob, got %v", err)
	}

	titled := JobProfile{Title: "Data Engineer"}
	if err := titled.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	described := JobProfile{Description: "We build pipelines."}
	if err := described.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJobLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		expect ExperienceLevel
	}{
		{"senior", LevelSenior},
		{" Mid ", LevelMid},
		{"ENTRY", LevelEntry},
		{"principal", LevelUnspecified},
		{"", LevelUnspecified},
	}

	for _, tt := range tests {
		job := JobProfile{ExperienceLevel: ExperienceLevel(tt.raw)}
		if got := job.Level(); got != tt.expect {
			t.Fatalf("level %q: expected %q, got %q", tt.raw, tt.expect, got)
		}
	}
}
