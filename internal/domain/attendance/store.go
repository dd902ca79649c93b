package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateBatch(ctx context.Context, source string, rowCount, errorCount int, createdBy string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO import_batches (source, row_count, error_count, created_by)
    VALUES ($1,$2,$3,NULLIF($4,''))
    RETURNING id
  `, source, rowCount, errorCount, createdBy).Scan(&id)
	return id, err
}

// UpsertDays writes reconciled days in one transaction. Days that were
// approved or manually edited are left untouched; the count of written rows
// is returned.
func (s *Store) UpsertDays(ctx context.Context, batchID string, days []StoredDay) (int, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	written := 0
	for _, day := range days {
		payload, err := json.Marshal(day.Record)
		if err != nil {
			return 0, fmt.Errorf("encode day %s/%s: %w", day.EmployeeNumber, DateKey(day.Record.Date), err)
		}
		tag, err := tx.Exec(ctx, `
      INSERT INTO attendance_days (batch_id, employee_number, employee_name, department, work_date, shift_type, hours_worked, record)
      SELECT $1,$2,$3,$4,$5,$6,$7,$8
      WHERE NOT EXISTS (
        SELECT 1 FROM approved_attendance_days a
        WHERE a.employee_number = $2 AND a.work_date = $5
      )
      ON CONFLICT (employee_number, work_date) DO UPDATE
      SET batch_id = EXCLUDED.batch_id,
          employee_name = EXCLUDED.employee_name,
          department = EXCLUDED.department,
          shift_type = EXCLUDED.shift_type,
          hours_worked = EXCLUDED.hours_worked,
          record = EXCLUDED.record,
          updated_at = now()
      WHERE NOT COALESCE((attendance_days.record->>'manualEdit')::boolean, false)
    `, batchID, day.EmployeeNumber, day.Name, day.Department, day.Record.Date, string(day.Record.ShiftType), day.Record.HoursWorked, payload)
		if err != nil {
			return 0, err
		}
		written += int(tag.RowsAffected())
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return written, nil
}

func (s *Store) CountDays(ctx context.Context, filter DayFilter) (int, error) {
	where, args := dayFilterSQL(filter)
	var total int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM attendance_days`+where, args...).Scan(&total)
	return total, err
}

func (s *Store) ListDays(ctx context.Context, filter DayFilter, limit, offset int) ([]StoredDay, error) {
	where, args := dayFilterSQL(filter)
	query := `
    SELECT id, batch_id, employee_number, employee_name, department, record, updated_at
    FROM attendance_days` + where + `
    ORDER BY employee_name, employee_number, work_date`
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredDay
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, rows.Err()
}

func (s *Store) GetDay(ctx context.Context, id string) (StoredDay, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, batch_id, employee_number, employee_name, department, record, updated_at
    FROM attendance_days
    WHERE id = $1
  `, id)
	day, err := scanDay(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredDay{}, ErrDayNotFound
	}
	return day, err
}

func (s *Store) UpdateDay(ctx context.Context, day StoredDay) error {
	payload, err := json.Marshal(day.Record)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance_days
    SET shift_type = $1, hours_worked = $2, record = $3, updated_at = now()
    WHERE id = $4
  `, string(day.Record.ShiftType), day.Record.HoursWorked, payload, day.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDayNotFound
	}
	return nil
}

// ApproveDays copies the given pending days into the approved table and
// removes them from the pending table.
func (s *Store) ApproveDays(ctx context.Context, ids []string, approvedBy string) (int, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    INSERT INTO approved_attendance_days (id, employee_number, employee_name, department, work_date, shift_type, hours_worked, record, approved_by)
    SELECT id, employee_number, employee_name, department, work_date, shift_type, hours_worked,
           jsonb_set(record, '{approved}', 'true'::jsonb), NULLIF($2,'')
    FROM attendance_days
    WHERE id = ANY($1::uuid[])
  `, ids, approvedBy)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM attendance_days WHERE id = ANY($1::uuid[])`, ids); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func dayFilterSQL(filter DayFilter) (string, []any) {
	var clauses []string
	var args []any
	if number := strings.TrimSpace(filter.EmployeeNumber); number != "" {
		args = append(args, number)
		clauses = append(clauses, fmt.Sprintf("employee_number = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		clauses = append(clauses, fmt.Sprintf("work_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		clauses = append(clauses, fmt.Sprintf("work_date <= $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanDay(row pgx.Row) (StoredDay, error) {
	var day StoredDay
	var payload []byte
	if err := row.Scan(&day.ID, &day.BatchID, &day.EmployeeNumber, &day.Name, &day.Department, &payload, &day.UpdatedAt); err != nil {
		return StoredDay{}, err
	}
	if err := json.Unmarshal(payload, &day.Record); err != nil {
		return StoredDay{}, fmt.Errorf("decode day %s: %w", day.ID, err)
	}
	return day, nil
}
