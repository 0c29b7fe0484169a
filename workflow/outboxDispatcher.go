package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/config"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OutboxDispatcher publishes pending audit_outbox rows to Pub/Sub. Delivery is
// at-least-once; the audit-log consumer deduplicates on the record id.
type OutboxDispatcher struct {
	DB     *gorm.DB
	Logger *logrus.Logger

	BatchSize      int
	PollInterval   time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

func NewOutboxDispatcher(db *gorm.DB, logger *logrus.Logger) *OutboxDispatcher {
	return &OutboxDispatcher{
		DB:             db,
		Logger:         logger,
		BatchSize:      50,
		PollInterval:   500 * time.Millisecond,
		MaxAttempts:    20,
		InitialBackoff: 5 * time.Second,
	}
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.dispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

// dispatchOnce claims one batch with SKIP LOCKED and publishes it while the
// row locks are held, so two dispatchers never race on the same records.
func (d *OutboxDispatcher) dispatchOnce(ctx context.Context) {
	if d.DB == nil {
		return
	}
	now := time.Now().UTC()

	_ = d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var claimed []models.AuditOutboxRecord
		err := tx.
			Where("publish_status = ?", models.OutboxPublishStatusPending).
			Order("id ASC").
			Limit(d.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Find(&claimed).Error
		if err != nil || len(claimed) == 0 {
			return err
		}

		for i := range claimed {
			rec := &claimed[i]
			if d.MaxAttempts > 0 && rec.Attempts >= d.MaxAttempts {
				if err := tx.Model(&models.AuditOutboxRecord{}).Where("id = ?", rec.ID).
					Updates(map[string]interface{}{
						"publish_status": models.OutboxPublishStatusDead,
						"attempts":       rec.Attempts,
					}).Error; err != nil {
					return err
				}
				if d.Logger != nil {
					d.Logger.WithFields(logrus.Fields{
						"field":     "OutboxDispatcher",
						"record_id": rec.ID,
						"attempts":  rec.Attempts,
					}).Error(fmt.Sprintf("outbox record moved to Dead after %d attempts", rec.Attempts))
				}
				continue
			}

			msg := config.AuditMessage{
				ID:            rec.ID,
				Table:         rec.Table,
				EntityId:      rec.EntityId,
				Period:        rec.Period,
				IsTarget:      rec.IsTarget,
				Action:        string(rec.Action),
				OldObj:        rec.OldObj,
				NewObj:        rec.NewObj,
				ActorId:       rec.ActorId,
				CorrelationId: rec.CorrelationId,
				OccurredAt:    rec.CreatedAt,
			}
			if _, pubErr := config.PublishAuditMessage(ctx, msg); pubErr != nil {
				if err := tx.Model(&models.AuditOutboxRecord{}).Where("id = ?", rec.ID).
					Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
					return err
				}
				config.LogError(d.Logger, "outboxDispatcher.go", "dispatchOnce", "publishing audit message", rec.ID, pubErr)
				continue
			}

			if err := tx.Model(&models.AuditOutboxRecord{}).Where("id = ?", rec.ID).
				Updates(map[string]interface{}{
					"publish_status": models.OutboxPublishStatusPublished,
					"attempts":       gorm.Expr("attempts + 1"),
					"published_at":   &now,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
