package services

import (
	"time"

	"mealplanner/models"

	"gorm.io/gorm"
)

type alertDeps struct {
	db *gorm.DB
	rt *RealtimeHub
	ps *PushService
}

var _alert alertDeps

func InitAlertDeps(db *gorm.DB, rt *RealtimeHub, ps *PushService) {
	_alert = alertDeps{db: db, rt: rt, ps: ps}
}

// EmitAlert records an alert and fans it out to any live websocket
// clients and the push channel. Safe to call anywhere; a no-op before
// InitAlertDeps runs.
func EmitAlert(userID uint, typ, message string) {
	if _alert.db == nil {
		return
	}
	a := &models.Alert{UserID: userID, Type: typ, Message: message, CreatedAt: time.Now()}
	_ = _alert.db.Create(a).Error

	if _alert.rt != nil {
		_alert.rt.BroadcastAlert(userID, AlertEvent{Kind: "alert.created", Alert: a})
	}
	if _alert.ps != nil {
		_alert.ps.Publish(userID, typ, message)
	}
}
