package attendance

import (
	"context"
	"fmt"
)

type Service struct {
	Store  StoreAPI
	Engine *Engine
}

func NewService(store StoreAPI, engine *Engine) *Service {
	if engine == nil {
		engine = NewEngine()
	}
	return &Service{Store: store, Engine: engine}
}

// Import persists a reconciled result as one batch.
func (s *Service) Import(ctx context.Context, source string, rowCount int, result Result, createdBy string) (ImportSummary, error) {
	if len(result.Employees) == 0 {
		return ImportSummary{}, ErrEmptyImport
	}
	batchID, err := s.Store.CreateBatch(ctx, source, rowCount, len(result.Errors), createdBy)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("create import batch: %w", err)
	}

	var days []StoredDay
	for _, emp := range result.Employees {
		for _, rec := range emp.Days {
			days = append(days, StoredDay{
				BatchID:        batchID,
				EmployeeNumber: emp.EmployeeNumber,
				Name:           emp.Name,
				Department:     emp.Department,
				Record:         rec,
			})
		}
	}
	written, err := s.Store.UpsertDays(ctx, batchID, days)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("store attendance days: %w", err)
	}
	return ImportSummary{
		BatchID:   batchID,
		Source:    source,
		RowCount:  rowCount,
		DayCount:  written,
		Employees: result.Employees,
		RowErrors: result.Errors,
	}, nil
}

func (s *Service) ListDays(ctx context.Context, filter DayFilter, limit, offset int) ([]StoredDay, int, error) {
	total, err := s.Store.CountDays(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	days, err := s.Store.ListDays(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return days, total, nil
}

// EditDay applies an operator edit and returns the day before and after.
func (s *Service) EditDay(ctx context.Context, id string, edit ManualEdit) (StoredDay, StoredDay, error) {
	return s.mutateDay(ctx, id, func(rec DailyRecord) (DailyRecord, error) {
		return s.Engine.Rules().ApplyManualEdit(rec, edit)
	})
}

func (s *Service) PenalizeDay(ctx context.Context, id string, minutes int) (StoredDay, StoredDay, error) {
	return s.mutateDay(ctx, id, func(rec DailyRecord) (DailyRecord, error) {
		return s.Engine.Rules().ApplyPenalty(rec, minutes)
	})
}

func (s *Service) mutateDay(ctx context.Context, id string, apply func(DailyRecord) (DailyRecord, error)) (StoredDay, StoredDay, error) {
	before, err := s.Store.GetDay(ctx, id)
	if err != nil {
		return StoredDay{}, StoredDay{}, err
	}
	rec, err := apply(before.Record)
	if err != nil {
		return before, StoredDay{}, err
	}
	after := before
	after.Record = rec
	if err := s.Store.UpdateDay(ctx, after); err != nil {
		return before, StoredDay{}, err
	}
	return before, after, nil
}

func (s *Service) Approve(ctx context.Context, ids []string, approvedBy string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.Store.ApproveDays(ctx, ids, approvedBy)
}

// EmployeeRecords regroups stored days into assembled employee records.
func (s *Service) EmployeeRecords(ctx context.Context, filter DayFilter) ([]EmployeeRecord, error) {
	days, err := s.Store.ListDays(ctx, filter, 0, 0)
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	var employees []EmployeeRecord
	for _, day := range days {
		i, ok := index[day.EmployeeNumber]
		if !ok {
			i = len(employees)
			index[day.EmployeeNumber] = i
			employees = append(employees, EmployeeRecord{
				EmployeeNumber: day.EmployeeNumber,
				Name:           day.Name,
				Department:     day.Department,
			})
		}
		employees[i].Days = append(employees[i].Days, day.Record)
	}
	return Assemble(employees), nil
}
