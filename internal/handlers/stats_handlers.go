package handlers

import (
	"net/http"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/event"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/handlers/render"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/rule"
	"go.uber.org/zap"
)

// GetStats returns the aggregate ledger and rule counters displayed on the dashboard
func GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := event.R().CountStats()
	if err != nil {
		zap.L().Error("Count event stats", zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}

	active, total, err := rule.R().CountByState()
	if err != nil {
		zap.L().Error("Count rules", zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}
	stats.AutomationRules = event.RuleStats{Active: active, Total: total}

	render.JSON(w, r, stats)
}
