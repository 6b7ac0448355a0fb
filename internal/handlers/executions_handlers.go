package handlers

import (
	"net/http"
	"time"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/execution"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/handlers/render"
	"go.uber.org/zap"
)

// GetExecutions returns a reverse-chronological page of the execution audit trail
func GetExecutions(w http.ResponseWriter, r *http.Request) {
	limit, err := QueryParamToOptionalInt(r, "limit", 50)
	if err != nil {
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}
	offset, err := QueryParamToOptionalInt(r, "offset", 0)
	if err != nil {
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}
	ruleID, err := QueryParamToOptionalInt64(r, "rule_id", 0)
	if err != nil {
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}
	from, err := QueryParamToOptionalTime(r, "from", time.Time{})
	if err != nil {
		render.Error(w, r, render.ErrAPIParsingDateTime, err)
		return
	}
	to, err := QueryParamToOptionalTime(r, "to", time.Time{})
	if err != nil {
		render.Error(w, r, render.ErrAPIParsingDateTime, err)
		return
	}

	filter := execution.Filter{
		RuleID:    ruleID,
		SubjectID: r.URL.Query().Get("subject_id"),
		From:      from,
		To:        to,
	}

	records, err := execution.R().List(filter, limit, offset)
	if err != nil {
		zap.L().Error("List executions", zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}

	render.JSON(w, r, records)
}
