package core

import (
	"errors"
	"testing"
)

func validRef() *ModuleRef {
	return &ModuleRef{
		Course:          "CM2025 Computer Security",
		CourseSlug:      "uol-cm2025-computer-security",
		TopicNumber:     1,
		ModuleName:      "Topic 1 Introduction",
		ModuleSlug:      "topic-1-introduction",
		TranscriptPaths: []string{"transcripts/01.txt"},
	}
}

func TestValidateModuleRef(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ModuleRef)
		wantErr error
	}{
		{
			name:    "valid ref",
			mutate:  func(r *ModuleRef) {},
			wantErr: nil,
		},
		{
			name:    "empty course",
			mutate:  func(r *ModuleRef) { r.Course = "" },
			wantErr: ErrEmptyCourse,
		},
		{
			name:    "empty module name",
			mutate:  func(r *ModuleRef) { r.ModuleName = "" },
			wantErr: ErrEmptyModuleName,
		},
		{
			name:    "zero topic number",
			mutate:  func(r *ModuleRef) { r.TopicNumber = 0 },
			wantErr: ErrInvalidTopicNumber,
		},
		{
			name:    "negative topic number",
			mutate:  func(r *ModuleRef) { r.TopicNumber = -2 },
			wantErr: ErrInvalidTopicNumber,
		},
		{
			name:    "no transcripts",
			mutate:  func(r *ModuleRef) { r.TranscriptPaths = nil },
			wantErr: ErrNoTranscripts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := validRef()
			tt.mutate(ref)
			err := ValidateModuleRef(ref)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateModuleRef() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidModuleRef) {
				t.Errorf("ValidateModuleRef() error %v does not wrap ErrInvalidModuleRef", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateModuleRef() error %v does not wrap %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateModuleRef_Nil(t *testing.T) {
	if err := ValidateModuleRef(nil); !errors.Is(err, ErrInvalidModuleRef) {
		t.Errorf("ValidateModuleRef(nil) = %v, want ErrInvalidModuleRef", err)
	}
}

func TestValidateOutlineEntry(t *testing.T) {
	valid := OutlineEntry{
		Order: 0,
		Kind:  KindSection,
		Title: "Introduction",
		Query: "Summarize the main themes of the module.",
	}

	tests := []struct {
		name    string
		mutate  func(*OutlineEntry)
		wantErr error
	}{
		{name: "valid entry", mutate: func(e *OutlineEntry) {}, wantErr: nil},
		{name: "negative order", mutate: func(e *OutlineEntry) { e.Order = -1 }, wantErr: ErrNegativeOrder},
		{name: "invalid kind", mutate: func(e *OutlineEntry) { e.Kind = SectionKind(42) }, wantErr: ErrInvalidSectionKind},
		{name: "empty title", mutate: func(e *OutlineEntry) { e.Title = "" }, wantErr: ErrEmptyTitle},
		{name: "empty query", mutate: func(e *OutlineEntry) { e.Query = "" }, wantErr: ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := valid
			tt.mutate(&entry)
			err := ValidateOutlineEntry(&entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateOutlineEntry() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidOutlineEntry) {
				t.Errorf("error %v does not wrap ErrInvalidOutlineEntry", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v does not wrap %v", err, tt.wantErr)
			}
		})
	}
}
