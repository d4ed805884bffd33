package services

// InputError reports a request the planner cannot act on. Its message is
// returned to the client as is.
type InputError struct{ Msg string }

func (e *InputError) Error() string { return e.Msg }

// PlanningError reports why a solve request was refused before reaching the solver.
type PlanningError struct{ Msg string }

func (e *PlanningError) Error() string { return e.Msg }

// ImportError reports an unusable bulk import file.
type ImportError struct{ Msg string }

func (e *ImportError) Error() string { return e.Msg }
