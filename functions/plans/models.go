package plans

import (
	"time"

	"github.com/google/uuid"
)

// Table names, also used by the ownership rules of the routes.
const (
	TablePlans     = "workout_plans"
	TableDays      = "plan_days"
	TableExercises = "day_exercises"
)

// Plan is a named training program.
type Plan struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	UserID      uuid.UUID `db:"user_id"     json:"userId"`
	Name        string    `db:"name"        json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at"  json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updatedAt"`

	Days []Day `db:"-" json:"days,omitempty"`
}

// Day is one training day of a plan.
type Day struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	PlanID    uuid.UUID `db:"plan_id"    json:"planId"`
	UserID    uuid.UUID `db:"user_id"    json:"userId"`
	Name      string    `db:"name"       json:"name"`
	Position  int       `db:"position"   json:"position"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Exercises []Exercise `db:"-" json:"exercises,omitempty"`
}

// Exercise is one movement of a day with its set and rep targets.
type Exercise struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	DayID     uuid.UUID `db:"day_id"     json:"dayId"`
	UserID    uuid.UUID `db:"user_id"    json:"userId"`
	Name      string    `db:"name"       json:"name"`
	Sets      int       `db:"sets"       json:"sets"`
	Reps      int       `db:"reps"       json:"reps"`
	Notes     *string   `db:"notes"      json:"notes"`
	Position  int       `db:"position"   json:"position"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// PlanInput is the body of POST /plans.
type PlanInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// PlanPatch is the body of PATCH /plans/{planId}. Nil fields are left as is.
type PlanPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// DayInput is the body of POST /plans/{planId}/days. A nil position appends.
type DayInput struct {
	Name     string `json:"name"`
	Position *int   `json:"position"`
}

// DayPatch is the body of PATCH /plans/{planId}/days/{dayId}.
type DayPatch struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

// ExerciseInput is the body of POST .../days/{dayId}/exercises.
type ExerciseInput struct {
	Name     string  `json:"name"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	Notes    *string `json:"notes"`
	Position *int    `json:"position"`
}

// ExercisePatch is the body of PATCH .../exercises/{exerciseId}.
type ExercisePatch struct {
	Name     *string `json:"name"`
	Sets     *int    `json:"sets"`
	Reps     *int    `json:"reps"`
	Notes    *string `json:"notes"`
	Position *int    `json:"position"`
}
