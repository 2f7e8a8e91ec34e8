package coordinator

import (
	"github.com/omarmosa2/dental-clinic-sub005/internal/domain/treatment"
)

// Step names used in reports.
const (
	StepTreatment       = "treatment"
	StepBilling         = "billing"
	StepLabOrder        = "lab_order"
	StepSessions        = "sessions"
	StepBillingCleanup  = "billing_cleanup"
	StepLabOrderCleanup = "lab_order_cleanup"
)

// StepResult is the outcome of one named step in a multi-step operation.
type StepResult struct {
	Step  string `json:"step"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Report is the structured outcome returned to the caller for every
// coordinated mutation. Steps appear in execution order, failed or not; on
// create and edit the required treatment step leads, on delete the cascade
// steps precede it.
type Report struct {
	Treatment *treatment.ToothTreatment `json:"treatment,omitempty"`
	Steps     []StepResult              `json:"steps"`
}

func (r *Report) ok(step string) {
	r.Steps = append(r.Steps, StepResult{Step: step, OK: true})
}

func (r *Report) fail(step string, err error) {
	r.Steps = append(r.Steps, StepResult{Step: step, OK: false, Error: err.Error()})
}

// OK reports whether every step succeeded.
func (r *Report) OK() bool {
	for _, s := range r.Steps {
		if !s.OK {
			return false
		}
	}
	return true
}

// Failed returns the names of the steps that failed.
func (r *Report) Failed() []string {
	var failed []string
	for _, s := range r.Steps {
		if !s.OK {
			failed = append(failed, s.Step)
		}
	}
	return failed
}
