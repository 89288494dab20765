package plans

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/ironlog/ironlog/pkg/db"
)

// Repository is the persistence surface of the plans function. Every
// method is scoped to userID; rows of other users are reported as
// ErrNotFound.
type Repository interface {
	ListPlans(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Plan, int, error)
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (Plan, error)
	CreatePlan(ctx context.Context, userID uuid.UUID, in PlanInput) (Plan, error)
	UpdatePlan(ctx context.Context, userID, planID uuid.UUID, in PlanPatch) (Plan, error)
	DeletePlan(ctx context.Context, userID, planID uuid.UUID) error

	ListDays(ctx context.Context, userID, planID uuid.UUID) ([]Day, error)
	CreateDay(ctx context.Context, userID, planID uuid.UUID, in DayInput) (Day, error)
	UpdateDay(ctx context.Context, userID, planID, dayID uuid.UUID, in DayPatch) (Day, error)
	DeleteDay(ctx context.Context, userID, planID, dayID uuid.UUID) error

	ListExercises(ctx context.Context, userID, planID, dayID uuid.UUID) ([]Exercise, error)
	CreateExercise(ctx context.Context, userID, planID, dayID uuid.UUID, in ExerciseInput) (Exercise, error)
	UpdateExercise(ctx context.Context, userID, planID, dayID, exerciseID uuid.UUID, in ExercisePatch) (Exercise, error)
	DeleteExercise(ctx context.Context, userID, planID, dayID, exerciseID uuid.UUID) error
}

// exerciseLoadLimit bounds the concurrent exercise queries of GetPlan.
const exerciseLoadLimit = 4

type pgRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewRepository returns a Repository backed by PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool, now: time.Now}
}

func (r *pgRepository) ListPlans(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Plan, int, error) {
	where := db.Eq{"user_id": userID}
	total, err := db.Count(ctx, r.pool, TablePlans, where)
	if err != nil {
		return nil, 0, err
	}
	plans, err := db.SelectPage[Plan](ctx, r.pool, TablePlans, where, db.Order{"created_at DESC", "id"}, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (r *pgRepository) GetPlan(ctx context.Context, userID, planID uuid.UUID) (Plan, error) {
	plan, err := db.SelectOne[Plan](ctx, r.pool, TablePlans, db.Eq{"id": planID, "user_id": userID})
	if err != nil {
		return Plan{}, mapError(err)
	}

	days, err := db.SelectAll[Day](ctx, r.pool, TableDays, db.Eq{"plan_id": planID, "user_id": userID}, db.Order{"position"})
	if err != nil {
		return Plan{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exerciseLoadLimit)
	for i := range days {
		g.Go(func() error {
			ex, err := db.SelectAll[Exercise](gctx, r.pool, TableExercises,
				db.Eq{"day_id": days[i].ID, "user_id": userID}, db.Order{"position"})
			if err != nil {
				return err
			}
			days[i].Exercises = ex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Plan{}, err
	}

	plan.Days = days
	return plan, nil
}

func (r *pgRepository) CreatePlan(ctx context.Context, userID uuid.UUID, in PlanInput) (Plan, error) {
	plan, err := db.Insert[Plan](ctx, r.pool, TablePlans, db.Values{
		"id":          uuid.New(),
		"user_id":     userID,
		"name":        in.Name,
		"description": in.Description,
	})
	return plan, mapError(err)
}

func (r *pgRepository) UpdatePlan(ctx context.Context, userID, planID uuid.UUID, in PlanPatch) (Plan, error) {
	values := db.Values{"updated_at": r.now()}
	if in.Name != nil {
		values["name"] = *in.Name
	}
	if in.Description != nil {
		values["description"] = *in.Description
	}
	plan, err := db.Update[Plan](ctx, r.pool, TablePlans, values, db.Eq{"id": planID, "user_id": userID})
	return plan, mapError(err)
}

func (r *pgRepository) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	n, err := db.Delete(ctx, r.pool, TablePlans, db.Eq{"id": planID, "user_id": userID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) ListDays(ctx context.Context, userID, planID uuid.UUID) ([]Day, error) {
	ok, err := db.Exists(ctx, r.pool, TablePlans, db.Eq{"id": planID, "user_id": userID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return db.SelectAll[Day](ctx, r.pool, TableDays, db.Eq{"plan_id": planID, "user_id": userID}, db.Order{"position"})
}

func (r *pgRepository) CreateDay(ctx context.Context, userID, planID uuid.UUID, in DayInput) (Day, error) {
	var day Day
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		siblings, err := r.lockDays(ctx, tx, userID, planID)
		if err != nil {
			return err
		}

		id := uuid.New()
		pos, moves := place(daySlots(siblings), id, in.Position)
		if err := r.move(ctx, tx, TableDays, moves); err != nil {
			return err
		}

		day, err = db.Insert[Day](ctx, tx, TableDays, db.Values{
			"id":       id,
			"plan_id":  planID,
			"user_id":  userID,
			"name":     in.Name,
			"position": pos,
		})
		return err
	})
	return day, mapError(err)
}

func (r *pgRepository) UpdateDay(ctx context.Context, userID, planID, dayID uuid.UUID, in DayPatch) (Day, error) {
	var day Day
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		siblings, err := r.lockDays(ctx, tx, userID, planID)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(siblings, func(d Day) bool { return d.ID == dayID }) {
			return ErrNotFound
		}

		values := db.Values{"updated_at": r.now()}
		if in.Name != nil {
			values["name"] = *in.Name
		}
		if in.Position != nil {
			pos, moves := place(daySlots(siblings), dayID, in.Position)
			if err := r.move(ctx, tx, TableDays, moves); err != nil {
				return err
			}
			values["position"] = pos
		}

		day, err = db.Update[Day](ctx, tx, TableDays, values, db.Eq{"id": dayID, "plan_id": planID, "user_id": userID})
		return err
	})
	return day, mapError(err)
}

func (r *pgRepository) DeleteDay(ctx context.Context, userID, planID, dayID uuid.UUID) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := db.LockRow(ctx, tx, TablePlans, db.Eq{"id": planID, "user_id": userID}); err != nil {
			return err
		}
		n, err := db.Delete(ctx, tx, TableDays, db.Eq{"id": dayID, "plan_id": planID, "user_id": userID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}

		rest, err := db.SelectAll[Day](ctx, tx, TableDays, db.Eq{"plan_id": planID}, db.Order{"position"})
		if err != nil {
			return err
		}
		return r.move(ctx, tx, TableDays, closeGap(daySlots(rest)))
	})
	return mapError(err)
}

func (r *pgRepository) ListExercises(ctx context.Context, userID, planID, dayID uuid.UUID) ([]Exercise, error) {
	ok, err := db.Exists(ctx, r.pool, TableDays, db.Eq{"id": dayID, "plan_id": planID, "user_id": userID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return db.SelectAll[Exercise](ctx, r.pool, TableExercises, db.Eq{"day_id": dayID, "user_id": userID}, db.Order{"position"})
}

func (r *pgRepository) CreateExercise(ctx context.Context, userID, planID, dayID uuid.UUID, in ExerciseInput) (Exercise, error) {
	var ex Exercise
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		siblings, err := r.lockExercises(ctx, tx, userID, planID, dayID)
		if err != nil {
			return err
		}

		id := uuid.New()
		pos, moves := place(exerciseSlots(siblings), id, in.Position)
		if err := r.move(ctx, tx, TableExercises, moves); err != nil {
			return err
		}

		ex, err = db.Insert[Exercise](ctx, tx, TableExercises, db.Values{
			"id":       id,
			"day_id":   dayID,
			"user_id":  userID,
			"name":     in.Name,
			"sets":     in.Sets,
			"reps":     in.Reps,
			"notes":    in.Notes,
			"position": pos,
		})
		return err
	})
	return ex, mapError(err)
}

func (r *pgRepository) UpdateExercise(ctx context.Context, userID, planID, dayID, exerciseID uuid.UUID, in ExercisePatch) (Exercise, error) {
	var ex Exercise
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		siblings, err := r.lockExercises(ctx, tx, userID, planID, dayID)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(siblings, func(e Exercise) bool { return e.ID == exerciseID }) {
			return ErrNotFound
		}

		values := db.Values{"updated_at": r.now()}
		if in.Name != nil {
			values["name"] = *in.Name
		}
		if in.Sets != nil {
			values["sets"] = *in.Sets
		}
		if in.Reps != nil {
			values["reps"] = *in.Reps
		}
		if in.Notes != nil {
			values["notes"] = *in.Notes
		}
		if in.Position != nil {
			pos, moves := place(exerciseSlots(siblings), exerciseID, in.Position)
			if err := r.move(ctx, tx, TableExercises, moves); err != nil {
				return err
			}
			values["position"] = pos
		}

		ex, err = db.Update[Exercise](ctx, tx, TableExercises, values,
			db.Eq{"id": exerciseID, "day_id": dayID, "user_id": userID})
		return err
	})
	return ex, mapError(err)
}

func (r *pgRepository) DeleteExercise(ctx context.Context, userID, planID, dayID, exerciseID uuid.UUID) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := db.LockRow(ctx, tx, TableDays, db.Eq{"id": dayID, "plan_id": planID, "user_id": userID}); err != nil {
			return err
		}
		n, err := db.Delete(ctx, tx, TableExercises, db.Eq{"id": exerciseID, "day_id": dayID, "user_id": userID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}

		rest, err := db.SelectAll[Exercise](ctx, tx, TableExercises, db.Eq{"day_id": dayID}, db.Order{"position"})
		if err != nil {
			return err
		}
		return r.move(ctx, tx, TableExercises, closeGap(exerciseSlots(rest)))
	})
	return mapError(err)
}

// lockDays locks the plan row and returns its days in position order.
func (r *pgRepository) lockDays(ctx context.Context, tx pgx.Tx, userID, planID uuid.UUID) ([]Day, error) {
	if err := db.LockRow(ctx, tx, TablePlans, db.Eq{"id": planID, "user_id": userID}); err != nil {
		return nil, err
	}
	return db.SelectAll[Day](ctx, tx, TableDays, db.Eq{"plan_id": planID}, db.Order{"position"})
}

// lockExercises locks the day row, which must belong to planID, and returns
// its exercises in position order.
func (r *pgRepository) lockExercises(ctx context.Context, tx pgx.Tx, userID, planID, dayID uuid.UUID) ([]Exercise, error) {
	if err := db.LockRow(ctx, tx, TableDays, db.Eq{"id": dayID, "plan_id": planID, "user_id": userID}); err != nil {
		return nil, err
	}
	return db.SelectAll[Exercise](ctx, tx, TableExercises, db.Eq{"day_id": dayID}, db.Order{"position"})
}

// move writes the new positions of shifted siblings. The position unique
// constraints are deferred, so the order of the updates does not matter.
func (r *pgRepository) move(ctx context.Context, tx pgx.Tx, table string, moves []slot) error {
	now := r.now()
	for _, m := range moves {
		if _, err := db.UpdateAll(ctx, tx, table, db.Values{"position": *m.pos, "updated_at": now}, db.Eq{"id": m.id}); err != nil {
			return err
		}
	}
	return nil
}

func daySlots(days []Day) []slot {
	out := make([]slot, len(days))
	for i, d := range days {
		out[i] = slotAt(d.ID, d.Position)
	}
	return out
}

func exerciseSlots(exercises []Exercise) []slot {
	out := make([]slot, len(exercises))
	for i, e := range exercises {
		out[i] = slotAt(e.ID, e.Position)
	}
	return out
}

// mapError translates storage errors into the package's sentinels.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound), db.IsForeignKeyViolation(err):
		return errors.Join(ErrNotFound, err)
	case db.IsUniqueViolation(err):
		return errors.Join(ErrConflict, err)
	}
	return err
}
