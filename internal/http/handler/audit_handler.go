package handler

import (
	"net/http"
	"time"

	"task-service/internal/audit"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	queryUserID   = "user_id"
	queryTable    = "table"
	queryAction   = "action"
	queryRecordID = "record_id"
	queryStart    = "start"
	queryEnd      = "end"
)

// AuditHandler exposes the audit trail to admins, read-only.
type AuditHandler struct {
	logger   *audit.Logger
	pageSize int
}

func NewAuditHandler(logger *audit.Logger, pageSize int) *AuditHandler {
	return &AuditHandler{logger: logger, pageSize: pageSize}
}

type AuditEntryResponse struct {
	ID          string         `json:"id"`
	UserID      *string        `json:"user_id"`
	UserEmail   *string        `json:"user_email"`
	Action      string         `json:"action"`
	TableName   string         `json:"table_name"`
	RecordID    *string        `json:"record_id"`
	OldValues   map[string]any `json:"old_values,omitempty"`
	NewValues   map[string]any `json:"new_values,omitempty"`
	IPAddress   *string        `json:"ip_address"`
	Endpoint    *string        `json:"endpoint"`
	Method      *string        `json:"method"`
	Description *string        `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}

func newAuditEntryResponse(e *audit.Entry) AuditEntryResponse {
	out := AuditEntryResponse{
		ID:          e.ID.String(),
		UserEmail:   e.UserEmail,
		Action:      string(e.Action),
		TableName:   e.TableName,
		RecordID:    e.RecordID,
		OldValues:   e.OldValues,
		NewValues:   e.NewValues,
		IPAddress:   e.IPAddress,
		Endpoint:    e.Endpoint,
		Method:      e.Method,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
	if e.UserID != nil {
		id := e.UserID.String()
		out.UserID = &id
	}
	return out
}

// ListLogs returns audit entries newest first, with the total match count
// for pagination.
func (h *AuditHandler) ListLogs(c echo.Context) error {
	filter, err := h.buildFilter(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	entries, total, err := h.logger.Query(c.Request().Context(), filter)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newAuditEntryResponse(e))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"entries": out,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

func (h *AuditHandler) ListActions(c echo.Context) error {
	actions, err := h.logger.DistinctActions(c.Request().Context())
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	if actions == nil {
		actions = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"actions": actions})
}

func (h *AuditHandler) Stats(c echo.Context) error {
	stats, err := h.logger.StatsByTable(c.Request().Context())
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"by_table": stats})
}

func (h *AuditHandler) buildFilter(c echo.Context) (audit.QueryFilter, error) {
	var filter audit.QueryFilter
	filter.Limit, filter.Offset = parsePagination(c, h.pageSize)

	if raw := c.QueryParam(queryUserID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.UserID = &id
	}
	if raw := c.QueryParam(queryTable); raw != "" {
		filter.TableName = &raw
	}
	if raw := c.QueryParam(queryAction); raw != "" {
		action := audit.Action(raw)
		filter.Action = &action
	}
	if raw := c.QueryParam(queryRecordID); raw != "" {
		filter.RecordID = &raw
	}
	if raw := c.QueryParam(queryStart); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.StartTime = &t
	}
	if raw := c.QueryParam(queryEnd); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.EndTime = &t
	}

	return filter, nil
}
