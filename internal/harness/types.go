package harness

// CaseResult is the observed outcome of one case.
type CaseResult struct {
	Name string `json:"name"`
	Kind string `json:"kind"`

	// SQL is the compiled condition or expression. Empty on error.
	SQL string `json:"sql,omitempty"`

	// IDs are the matching node ids of a search case, in result order.
	IDs []int64 `json:"ids,omitempty"`

	// ErrorCode is the qerr code of a failed compile, or "" on success.
	ErrorCode string `json:"error_code,omitempty"`

	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// addError records a mismatch and marks the case as failed.
func (c *CaseResult) addError(err string) {
	c.Errors = append(c.Errors, err)
	c.Pass = false
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every case passed.
	Pass bool `json:"pass"`

	// Cases holds one entry per scenario case, in scenario order.
	Cases []CaseResult `json:"cases"`

	// Errors contains every case error prefixed with the case name.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addCase appends a case result and folds its errors into r.
func (r *Result) addCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	for _, e := range c.Errors {
		r.AddError(c.Name + ": " + e)
	}
}
