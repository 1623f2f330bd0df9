package audit

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event records one administrative mutation (housekeeping action, admin
// grant/revoke, auction delete). Unlike the auction tables, this table is
// owned by the application and migrated on startup.
type Event struct {
	ID        int            `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID   int            `gorm:"index" json:"actor_id"`
	Action    string         `gorm:"type:varchar(64);not null;index" json:"action"`
	TargetID  int            `json:"target_id"`
	Params    datatypes.JSON `json:"params"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Event model
func (Event) TableName() string {
	return "audit_events"
}

// Recorder writes audit events. Failures are logged and swallowed; an
// audit write must never fail the mutation it describes.
type Recorder struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewRecorder creates a new audit recorder
func NewRecorder(db *gorm.DB, logger *logrus.Entry) *Recorder {
	return &Recorder{db: db, logger: logger.WithField("component", "audit")}
}

// Record persists one audit event.
func (r *Recorder) Record(actorID int, action string, targetID int, params map[string]interface{}) {
	if r == nil || r.db == nil {
		return
	}

	var raw datatypes.JSON
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			r.logger.WithError(err).Warn("failed to marshal audit params")
		} else {
			raw = datatypes.JSON(b)
		}
	}

	ev := Event{
		ActorID:  actorID,
		Action:   action,
		TargetID: targetID,
		Params:   raw,
	}
	if err := r.db.Create(&ev).Error; err != nil {
		r.logger.WithError(err).WithField("action", action).Warn("failed to record audit event")
	}
}
