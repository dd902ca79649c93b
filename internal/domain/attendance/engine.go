package attendance

import (
	"golang.org/x/sync/errgroup"
)

// Engine reconciles raw terminal rows into per-employee daily records. It is
// synchronous and keeps no state between calls.
type Engine struct {
	rules   Rules
	parse   TimestampParser
	workers int
}

type Option func(*Engine)

func WithRules(rules Rules) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

func WithTimestampParser(parse TimestampParser) Option {
	return func(e *Engine) {
		if parse != nil {
			e.parse = parse
		}
	}
}

// WithWorkers processes up to n employees at once. Output does not depend on n.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{rules: DefaultRules(), parse: ParseTimestamp, workers: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// ProcessTable maps a spreadsheet table and processes it. A FileShapeError is
// returned before any row is interpreted.
func (e *Engine) ProcessTable(table [][]string) (Result, error) {
	rows, err := RowsFromTable(table)
	if err != nil {
		return Result{}, err
	}
	return e.Process(rows), nil
}

func (e *Engine) Process(rows []RawRow) Result {
	events, rowErrors := e.rules.Ingest(rows, e.parse)
	groups := groupByEmployee(events)

	employees := make([]EmployeeRecord, len(groups))
	if e.workers <= 1 || len(groups) <= 1 {
		for i, group := range groups {
			employees[i] = e.processEmployee(group)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.workers)
		for i, group := range groups {
			i, group := i, group
			g.Go(func() error {
				employees[i] = e.processEmployee(group)
				return nil
			})
		}
		_ = g.Wait()
	}

	return Result{Employees: Assemble(employees), Errors: rowErrors}
}

func (e *Engine) processEmployee(events []Event) EmployeeRecord {
	nightWorker := e.rules.NightWorker.LikelyNightWorker(events)
	resolved := e.rules.ResolveMislabels(events, nightWorker)
	linked := e.rules.LinkNightShifts(resolved)
	days := FillOffDays(e.rules.BuildDays(linked, nightWorker))

	first := events[0]
	return EmployeeRecord{
		EmployeeNumber: first.EmployeeNumber,
		Name:           first.Name,
		Department:     first.Department,
		Days:           days,
		TotalDays:      len(days),
	}
}

// groupByEmployee splits events per employee, keeping file order inside each
// group and ordering groups by first appearance.
func groupByEmployee(events []Event) [][]Event {
	index := map[string]int{}
	var groups [][]Event
	for _, ev := range events {
		i, ok := index[ev.EmployeeID]
		if !ok {
			i = len(groups)
			index[ev.EmployeeID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], ev)
	}
	return groups
}
