package video

// Stage is one phase of an assembly run. Stages advance strictly in order
// and never regress within a run.
type Stage int

const (
	StageLoading Stage = iota + 1
	StagePreparing
	StageEncoding
	StageFinalizing
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageLoading:
		return "loading"
	case StagePreparing:
		return "preparing"
	case StageEncoding:
		return "encoding"
	case StageFinalizing:
		return "finalizing"
	case StageComplete:
		return "complete"
	}
	return "unknown"
}

type Progress struct {
	Stage   Stage
	Percent int
	Message string
}

// ProgressFunc is invoked synchronously between pipeline steps; callers must
// not block inside it.
type ProgressFunc func(Progress)

// reporter clamps stage and percent so the reported sequence is monotonic
// even if interior steps round against each other.
type reporter struct {
	fn          ProgressFunc
	lastStage   Stage
	lastPercent int
}

func (r *reporter) report(stage Stage, percent int, message string) {
	if stage < r.lastStage {
		stage = r.lastStage
	}
	if percent < r.lastPercent {
		percent = r.lastPercent
	}
	r.lastStage, r.lastPercent = stage, percent

	if r.fn != nil {
		r.fn(Progress{Stage: stage, Percent: percent, Message: message})
	}
}

// interpolate maps step/total onto the [from, to] percent range.
func interpolate(from, to, step, total int) int {
	if total <= 0 {
		return to
	}
	return from + (to-from)*step/total
}
