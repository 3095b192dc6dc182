package proc

import (
	"context"
	"io"
	"strings"
)

// Fake records every command it is asked to run and answers from a script
// keyed by the command line. Unscripted commands succeed with no output.
type Fake struct {
	Calls   []string
	Results map[string]FakeResult
}

type FakeResult struct {
	Status int
	Stdout string
}

func (f *Fake) Run(_ context.Context, c *Cmd) (int, error) {
	line := c.String()
	f.Calls = append(f.Calls, line)
	res, ok := f.Results[line]
	if !ok {
		return 0, nil
	}
	if c.Stdout != nil && res.Stdout != "" {
		io.WriteString(c.Stdout, res.Stdout)
	}
	return res.Status, nil
}

// Set scripts the result for the command line formed by joining argv with spaces.
func (f *Fake) Set(argv []string, res FakeResult) {
	if f.Results == nil {
		f.Results = make(map[string]FakeResult)
	}
	f.Results[strings.Join(argv, " ")] = res
}
