// Package planner generates day-by-day study plans.
//
// Given a snapshot of a student's active courses — topics with
// difficulty, importance, estimated effort, and prerequisites — plus
// a daily study-hours budget and days off, the engine orders each
// course's topics topologically, scores courses by exam urgency and
// workload, compresses topic effort when time is short, and greedily
// packs topics into the calendar day by day up to each course's exam
// date.
//
// The engine is a pure function of (snapshot, today). Cyclic
// prerequisites and insufficient study time never abort a run; both
// degrade into diagnostics on the emitted plan.
package planner
