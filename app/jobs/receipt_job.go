package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/marketplace/app/repositories"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"github.com/shashiranjanraj/marketplace/pkg/storage"
	"gorm.io/gorm"
)

// ArchiveReceiptJob writes a JSON snapshot of a placed order to the storage
// disk under receipts/{yyyy}/{mm}/{orderID}-{uuid}.json.
type ArchiveReceiptJob struct {
	OrderID uint `json:"orderId"`

	db   *gorm.DB
	disk storage.Disk
}

func (j *ArchiveReceiptJob) Handle(ctx context.Context) error {
	order, err := repositories.NewOrderRepository(j.db).FindByID(ctx, j.OrderID)
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		return fmt.Errorf("jobs: encode receipt %d: %w", order.ID, err)
	}

	disk := j.disk
	if disk == nil {
		disk = storage.Default()
	}

	path := fmt.Sprintf("receipts/%s/%d-%s.json", order.CreatedAt.UTC().Format("2006/01"), order.ID, uuid.NewString())
	if err := disk.Put(ctx, path, body, "application/json"); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("receipt archived", "order_id", order.ID, "path", path)
	return nil
}
