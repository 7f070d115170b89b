package assessment

// ScoreTrigger holds a completed answer set until the reveal that precedes the
// score has finished. It fires at most once per arming.
type ScoreTrigger struct {
	answers []Answer
	armed   bool
}

// Arm stores the completed answer set.
func (t *ScoreTrigger) Arm(answers []Answer) {
	t.answers = append([]Answer(nil), answers...)
	t.armed = true
}

// Armed reports whether a score is waiting to be shown.
func (t *ScoreTrigger) Armed() bool {
	return t.armed
}

// Fire returns the stored answers and disarms the trigger when it is armed and
// idle is true. Otherwise it returns false and leaves the trigger unchanged.
func (t *ScoreTrigger) Fire(idle bool) ([]Answer, bool) {
	if !t.armed || !idle {
		return nil, false
	}
	answers := t.answers
	t.Disarm()
	return answers, true
}

// Disarm drops any stored answers.
func (t *ScoreTrigger) Disarm() {
	t.answers = nil
	t.armed = false
}
