package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/appctx"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditOutboxRecord is the transactional outbox for fact mutations: the row is
// written inside the caller's DB transaction and published to Pub/Sub by the
// dispatcher after commit. The audit-log writer itself is an external consumer.
type AuditOutboxRecord struct {
	ID            int                 `gorm:"primary_key" json:"id"`
	Table         string              `gorm:"column:table_name;size:64;not null;index" json:"table_name"`
	EntityId      string              `gorm:"size:128;not null" json:"entity_id"`
	Period        time.Time           `gorm:"not null" json:"period"`
	IsTarget      bool                `gorm:"not null;default:false" json:"is_target"`
	Action        AuditAction         `gorm:"size:16;not null" json:"action"`
	OldObj        []byte              `gorm:"type:json" json:"old_obj"`
	NewObj        []byte              `gorm:"type:json" json:"new_obj"`
	ActorId       string              `gorm:"size:64" json:"actor_id"`
	CorrelationId string              `gorm:"size:64;index" json:"correlation_id"`
	PublishStatus OutboxPublishStatus `gorm:"size:16;not null;default:'Pending';index" json:"publish_status"`
	Attempts      int                 `gorm:"not null;default:0" json:"attempts"`
	PublishedAt   *time.Time          `json:"published_at"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AuditOutboxRecord) TableName() string { return "audit_outbox" }

// RecordAudit appends an outbox row for one fact mutation. Must be called on
// the same transaction that performs the mutation so the event and the write
// commit or roll back together.
func RecordAudit(ctx context.Context, tx *gorm.DB, table string, entityId string, period time.Time, isTarget bool, action AuditAction, oldObj any, newObj any) error {
	var (
		oldJSON []byte
		newJSON []byte
		err     error
	)
	if oldObj != nil {
		if oldJSON, err = json.Marshal(oldObj); err != nil {
			return err
		}
	}
	if newObj != nil {
		if newJSON, err = json.Marshal(newObj); err != nil {
			return err
		}
	}

	record := AuditOutboxRecord{
		Table:         table,
		EntityId:      entityId,
		Period:        period,
		IsTarget:      isTarget,
		Action:        action,
		OldObj:        oldJSON,
		NewObj:        newJSON,
		ActorId:       actorIdFromContext(ctx),
		CorrelationId: correlationIdFromContextOrNew(ctx),
		PublishStatus: OutboxPublishStatusPending,
	}
	return tx.Create(&record).Error
}

func actorIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := appctx.GetString(ctx, appctx.ContextKeyUserId)
	return v
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := appctx.GetString(ctx, appctx.ContextKeyCorrelationId); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
