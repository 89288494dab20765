package plans

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen  = 100
	maxTextLen  = 1000
	maxSets     = 100
	maxReps     = 1000
	fieldBody   = "body"
	msgRequired = "is required"
)

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]string

func (f fieldErrors) name(field string, v *string) {
	if v == nil {
		return
	}
	*v = strings.TrimSpace(*v)
	switch n := utf8.RuneCountInString(*v); {
	case n == 0:
		f[field] = msgRequired
	case n > maxNameLen:
		f[field] = fmt.Sprintf("must be at most %d characters", maxNameLen)
	}
}

func (f fieldErrors) text(field string, v *string) {
	if v != nil && utf8.RuneCountInString(*v) > maxTextLen {
		f[field] = fmt.Sprintf("must be at most %d characters", maxTextLen)
	}
}

func (f fieldErrors) between(field string, v *int, lo, hi int) {
	if v != nil && (*v < lo || *v > hi) {
		f[field] = fmt.Sprintf("must be between %d and %d", lo, hi)
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return validationError(f)
}

func (in *PlanInput) validate() error {
	f := fieldErrors{}
	f.name("name", &in.Name)
	f.text("description", in.Description)
	return f.err()
}

func (in *PlanPatch) validate() error {
	f := fieldErrors{}
	if in.Name == nil && in.Description == nil {
		f[fieldBody] = "at least one field is required"
	}
	f.name("name", in.Name)
	f.text("description", in.Description)
	return f.err()
}

func (in *DayInput) validate() error {
	f := fieldErrors{}
	f.name("name", &in.Name)
	return f.err()
}

func (in *DayPatch) validate() error {
	f := fieldErrors{}
	if in.Name == nil && in.Position == nil {
		f[fieldBody] = "at least one field is required"
	}
	f.name("name", in.Name)
	return f.err()
}

func (in *ExerciseInput) validate() error {
	f := fieldErrors{}
	f.name("name", &in.Name)
	f.between("sets", &in.Sets, 1, maxSets)
	f.between("reps", &in.Reps, 1, maxReps)
	f.text("notes", in.Notes)
	return f.err()
}

func (in *ExercisePatch) validate() error {
	f := fieldErrors{}
	if in.Name == nil && in.Sets == nil && in.Reps == nil && in.Notes == nil && in.Position == nil {
		f[fieldBody] = "at least one field is required"
	}
	f.name("name", in.Name)
	f.between("sets", in.Sets, 1, maxSets)
	f.between("reps", in.Reps, 1, maxReps)
	f.text("notes", in.Notes)
	return f.err()
}
