package attendance

import "context"

type StoreAPI interface {
	CreateBatch(ctx context.Context, source string, rowCount, errorCount int, createdBy string) (string, error)
	UpsertDays(ctx context.Context, batchID string, days []StoredDay) (int, error)
	CountDays(ctx context.Context, filter DayFilter) (int, error)
	ListDays(ctx context.Context, filter DayFilter, limit, offset int) ([]StoredDay, error)
	GetDay(ctx context.Context, id string) (StoredDay, error)
	UpdateDay(ctx context.Context, day StoredDay) error
	ApproveDays(ctx context.Context, ids []string, approvedBy string) (int, error)
}
