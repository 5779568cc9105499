package analysis

import "fmt"

// CaptionSentinel is returned in place of a real caption when the description
// backend is unavailable or fails. Downstream policy treats it as "no caption
// produced", which is distinct from an empty or short real caption.
const CaptionSentinel = "AI description service unavailable"

// StageError identifies which analysis stage failed. Stages never abort an
// item; the error is logged and the stage's documented fallback value is used.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
