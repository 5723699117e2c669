package scenario

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is how far a scenario got. States only move forward.
type State int

const (
	Initial State = iota
	HomeLoaded
	SearchSubmitted
	ResultsVerified
	JobTabOpened
	DetailsVerified
)

var stateNames = [...]string{
	Initial:         "initial",
	HomeLoaded:      "home_loaded",
	SearchSubmitted: "search_submitted",
	ResultsVerified: "results_verified",
	JobTabOpened:    "job_tab_opened",
	DetailsVerified: "details_verified",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown scenario state %q", b)
}

// StepError is the failure that stopped a scenario.
type StepError struct {
	Step  string
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed in state %s: %v", e.Step, e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Result struct {
	ID         string        `json:"id"`
	Scenario   string        `json:"scenario"`
	Keyword    string        `json:"keyword"`
	JobTitle   string        `json:"job_title"`
	JobURL     string        `json:"job_url,omitempty"`
	State      State         `json:"state"`
	Err        error         `json:"-"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Screenshot string        `json:"screenshot,omitempty"`
}

func (r Result) Passed() bool {
	return r.Err == nil && r.State == DetailsVerified
}

type Scenario interface {
	Name() string
	Run(ctx context.Context) Result
}

// RunScenarios runs every scenario and streams the results. The channel is
// closed after the last one finishes.
func RunScenarios(ctx context.Context, scenarios []Scenario, parallel bool, log zerolog.Logger) <-chan Result {
	out := make(chan Result)
	var wg sync.WaitGroup

	run := func(s Scenario) {
		log.Info().Str("scenario", s.Name()).Msg("Starting scenario")
		res := s.Run(ctx)
		logResult(log, res)
		select {
		case <-ctx.Done():
		case out <- res:
		}
	}

	go func() {
		if parallel {
			for _, s := range scenarios {
				wg.Add(1)
				go func(s Scenario) {
					defer wg.Done()
					run(s)
				}(s)
			}
			wg.Wait()
		} else {
			for _, s := range scenarios {
				if ctx.Err() != nil {
					break
				}
				run(s)
			}
		}

		close(out)
	}()

	return out
}

func logResult(log zerolog.Logger, res Result) {
	ev := log.Info()
	msg := "Scenario passed"
	if !res.Passed() {
		ev = log.Error().Err(res.Err)
		msg = "Scenario failed"
	}
	ev.Str("scenario", res.Scenario).
		Str("run_id", res.ID).
		Stringer("state", res.State).
		Dur("took", res.Duration).
		Str("screenshot", res.Screenshot).
		Msg(msg)
}
