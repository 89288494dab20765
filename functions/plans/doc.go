// Package plans is the workout-plans function: plans owned by a user, their
// ordered training days and the ordered exercises of each day.
//
// Days and exercises keep dense 1..N positions within their parent. Every
// write that moves a row renumbers its siblings inside the same transaction,
// with the parent row locked, so concurrent edits of one plan serialize.
package plans
