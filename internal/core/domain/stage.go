package domain

// Stage is a named phase of the pipeline with an optional preceding stage.
// The preceding stage is referenced by id only.
type Stage struct {
	id        InternedString
	preceding InternedString
}

// NewStage creates a Stage. An empty precedingID means the stage has no precedent.
func NewStage(id, precedingID string) Stage {
	s := Stage{id: NewInternedString(id)}
	if precedingID != "" {
		s.preceding = NewInternedString(precedingID)
	}
	return s
}

// ID returns the stage id.
func (s Stage) ID() InternedString {
	return s.id
}

// Preceding returns the id of the preceding stage, if any.
func (s Stage) Preceding() (InternedString, bool) {
	return s.preceding, !s.preceding.IsZero()
}

// TriggerID returns the id of the trigger node that completes when the stage does.
func TriggerID(prefix string, stage InternedString) InternedString {
	return NewInternedString(prefix + "Stage_" + stage.String() + "_Trigger")
}
