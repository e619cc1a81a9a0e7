package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"orderdesk/internal/app/store/repository"
	"orderdesk/internal/app/store/service"
	"orderdesk/pkg/logger"
	"orderdesk/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// SnapshotScheduler периодически выгружает снапшоты каталога и заказов на диск
// и обновляет gauge-метрику распределения заказов по статусам
type SnapshotScheduler struct {
	cron       *cron.Cron
	productSvc service.ProductServiceInterface
	orderSvc   service.OrderServiceInterface
	orderRepo  repository.OrderRepository
	exportDir  string
}

// NewSnapshotScheduler создает новый планировщик снапшотов
func NewSnapshotScheduler(
	productSvc service.ProductServiceInterface,
	orderSvc service.OrderServiceInterface,
	orderRepo repository.OrderRepository,
	exportDir string,
) *SnapshotScheduler {
	return &SnapshotScheduler{
		cron:       cron.New(),
		productSvc: productSvc,
		orderSvc:   orderSvc,
		orderRepo:  orderRepo,
		exportDir:  exportDir,
	}
}

// Start регистрирует задачу по расписанию и сразу выполняет первый прогон
// Ошибка первого прогона не мешает запуску планировщика
func (s *SnapshotScheduler) Start(ctx context.Context, schedule string) error {
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot job: %w", err)
	}

	s.cron.Start()
	logger.Info().Str("schedule", schedule).Str("dir", s.exportDir).Msg("snapshot scheduler started")

	s.runOnce(ctx)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущих задач
func (s *SnapshotScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("snapshot scheduler stopped")
}

// GetEntries возвращает зарегистрированные задачи
func (s *SnapshotScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

func (s *SnapshotScheduler) runOnce(ctx context.Context) {
	s.exportSnapshot(ctx, "products", s.productSvc.Export)
	s.exportSnapshot(ctx, "orders", s.orderSvc.Export)
	s.refreshStatusGauge(ctx)
}

func (s *SnapshotScheduler) exportSnapshot(ctx context.Context, name string, export func(context.Context) (string, error)) {
	data, err := export(ctx)
	if err != nil {
		metrics.SnapshotExports.WithLabelValues(name, "failed").Inc()
		logger.Error().Err(err).Str("entity", name).Msg("snapshot export failed")
		return
	}

	filename := fmt.Sprintf("%s_%s.json", name, time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(s.exportDir, filename)

	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		metrics.SnapshotExports.WithLabelValues(name, "failed").Inc()
		logger.Error().Err(err).Str("path", path).Msg("failed to write snapshot file")
		return
	}

	metrics.SnapshotExports.WithLabelValues(name, "success").Inc()
	logger.Info().Str("path", path).Msg("snapshot exported")
}

func (s *SnapshotScheduler) refreshStatusGauge(ctx context.Context) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to refresh orders by status gauge")
		return
	}

	for status, total := range counts {
		metrics.OrdersByStatus.WithLabelValues(string(status)).Set(float64(total))
	}
}
