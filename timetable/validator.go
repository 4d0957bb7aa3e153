package timetable

// Validator runs the conflict rules over a resolved candidate and its peer
// set. It holds no state between calls and never touches storage, so the
// same candidate and peers always give the same answer.
type Validator struct {
	rules []rule
}

func NewValidator() *Validator {
	return &Validator{rules: defaultRules()}
}

// Validate returns the first violation in rule order, or nil.
// peers are the entries already booked on the candidate's day and hour slot,
// without the candidate's own stored version.
func (v *Validator) Validate(candidate Entry, peers []Entry) error {
	var first *ValidationError
	v.run(&candidate, peers, func(err *ValidationError) bool {
		first = err
		return false
	})
	if first == nil {
		return nil
	}
	return first
}

// ValidateAll returns every violation, in the order Validate would meet them.
func (v *Validator) ValidateAll(candidate Entry, peers []Entry) []*ValidationError {
	var errs []*ValidationError
	v.run(&candidate, peers, func(err *ValidationError) bool {
		errs = append(errs, err)
		return true
	})
	return errs
}

func (v *Validator) run(c *Entry, peers []Entry, emit emitFunc) {
	for _, r := range v.rules {
		if !r.check(c, peers, emit) {
			return
		}
	}
}
