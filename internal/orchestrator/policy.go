package orchestrator

// The scheduling and eviction thresholds below encode a deliberate
// "keep more lookahead than lookbehind" policy. The values are tunable in
// principle but default to the ones the behavior was calibrated with.

const (
	// Eviction prefers the tail once it runs far enough ahead of the
	// reader: the tail boundary is the victim while
	//   lastDelete > tailSkewCurrentWeight*current - tailSkewHeadWeight*firstDelete.
	// A reader that just passed some pages keeps a larger trailing buffer
	// behind it than the leading buffer in front.
	tailSkewCurrentWeight = 4
	tailSkewHeadWeight    = 3

	// Backward filling and the forward thrash guard compare usage against
	// slackNum/slackDen (two thirds) of the respective budget.
	slackNum = 2
	slackDen = 3

	// The forward guard also stops once the remaining byte headroom drops
	// below headroomFactor times the average per-page cost: rendering one
	// more page would immediately force its own eviction.
	headroomFactor = 2
)

// unboundedUsage stands in for "minus infinity" bytes used when the byte
// budget is unlimited, so every budget comparison stays plain integer
// arithmetic regardless of whether a limit is set.
const unboundedUsage int64 = -8589934591
