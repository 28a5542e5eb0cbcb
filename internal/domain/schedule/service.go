package schedule

import "context"

type ScheduleService interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	List(ctx context.Context, req MonthQuery) (MonthScheduleResponse, error)
	Export(ctx context.Context, req MonthQuery) (ExportFile, error)
}
