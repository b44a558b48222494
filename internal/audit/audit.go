package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// Action represents the operation recorded by an entry.
type Action string

const (
	ActionCreate         Action = "create"
	ActionRead           Action = "read"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionRestore        Action = "restore"
	ActionLogin          Action = "login"
	ActionLogout         Action = "logout"
	ActionPasswordChange Action = "password_change"
	ActionPasswordReset  Action = "password_reset"
)

const writeTimeout = 2 * time.Second

// Entry is an append-only record of who did what to which row.
type Entry struct {
	ID          uuid.UUID
	UserID      *uuid.UUID
	UserEmail   *string
	Action      Action
	TableName   string
	RecordID    *string
	OldValues   map[string]any
	NewValues   map[string]any
	IPAddress   *string
	UserAgent   *string
	Endpoint    *string
	Method      *string
	Description *string
	CreatedAt   time.Time
}

// Logger writes and queries audit entries.
type Logger struct {
	pool *pgxpool.Pool
}

func NewLogger(pool *pgxpool.Pool) *Logger {
	return &Logger{pool: pool}
}

// Log records an audit entry.
func (l *Logger) Log(ctx context.Context, entry *Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	oldJSON, err := marshalValues(entry.OldValues)
	if err != nil {
		return err
	}
	newJSON, err := marshalValues(entry.NewValues)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_logs (
			id, user_id, user_email, action, table_name, record_id,
			old_values, new_values, ip_address, user_agent, endpoint, method,
			description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = l.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.UserEmail,
		entry.Action,
		entry.TableName,
		entry.RecordID,
		oldJSON,
		newJSON,
		entry.IPAddress,
		entry.UserAgent,
		entry.Endpoint,
		entry.Method,
		entry.Description,
		entry.CreatedAt,
	)

	return err
}

// Record is the write path handlers use. Request context (IP, user agent,
// endpoint, method) is taken from the Echo context; the write happens
// asynchronously so an audit failure never fails the request.
type Record struct {
	UserID      *uuid.UUID
	UserEmail   *string
	Action      Action
	TableName   string
	RecordID    string
	OldValues   map[string]any
	NewValues   map[string]any
	Description string
}

func (l *Logger) LogFromContext(c echo.Context, rec Record) {
	ip := c.RealIP()
	userAgent := c.Request().UserAgent()
	endpoint := c.Request().URL.Path
	method := c.Request().Method

	entry := &Entry{
		UserID:    rec.UserID,
		UserEmail: rec.UserEmail,
		Action:    rec.Action,
		TableName: rec.TableName,
		OldValues: rec.OldValues,
		NewValues: rec.NewValues,
		IPAddress: &ip,
		UserAgent: &userAgent,
		Endpoint:  &endpoint,
		Method:    &method,
	}
	if rec.RecordID != "" {
		entry.RecordID = &rec.RecordID
	}
	if rec.Description != "" {
		entry.Description = &rec.Description
	}

	out := c.Logger().Output()
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	go func() {
		defer cancel()
		if err := l.Log(ctx, entry); err != nil {
			fmt.Fprintf(out, "audit log failed: %v\n", err)
		}
	}()
}

// QueryFilter narrows List results. Zero-valued fields are ignored.
type QueryFilter struct {
	UserID    *uuid.UUID
	TableName *string
	Action    *Action
	RecordID  *string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

const defaultQueryLimit = 100

// Query retrieves entries matching the filter, newest first, along with the
// total match count for pagination.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]*Entry, int64, error) {
	where := " WHERE 1=1"
	args := []any{}
	argCount := 0

	addArg := func(clause string, value any) {
		argCount++
		where += fmt.Sprintf(clause, argCount)
		args = append(args, value)
	}

	if filter.UserID != nil {
		addArg(" AND user_id = $%d", *filter.UserID)
	}
	if filter.TableName != nil {
		addArg(" AND table_name = $%d", *filter.TableName)
	}
	if filter.Action != nil {
		addArg(" AND action = $%d", *filter.Action)
	}
	if filter.RecordID != nil {
		addArg(" AND record_id = $%d", *filter.RecordID)
	}
	if filter.StartTime != nil {
		addArg(" AND created_at >= $%d", *filter.StartTime)
	}
	if filter.EndTime != nil {
		addArg(" AND created_at <= $%d", *filter.EndTime)
	}

	var total int64
	if err := l.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, user_email, action, table_name, record_id,
		       old_values, new_values, ip_address, user_agent, endpoint, method,
		       description, created_at
		FROM audit_logs
	` + where + " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	argCount++
	query += fmt.Sprintf(" LIMIT $%d", argCount)
	args = append(args, limit)

	if filter.Offset > 0 {
		argCount++
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filter.Offset)
	}

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		entry := &Entry{}
		var oldJSON, newJSON []byte

		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.UserEmail,
			&entry.Action,
			&entry.TableName,
			&entry.RecordID,
			&oldJSON,
			&newJSON,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.Endpoint,
			&entry.Method,
			&entry.Description,
			&entry.CreatedAt,
		); err != nil {
			return nil, 0, err
		}

		if entry.OldValues, err = unmarshalValues(oldJSON); err != nil {
			return nil, 0, err
		}
		if entry.NewValues, err = unmarshalValues(newJSON); err != nil {
			return nil, 0, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// DistinctActions lists the action values present in the log, for filter
// dropdowns.
func (l *Logger) DistinctActions(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, "SELECT DISTINCT action FROM audit_logs ORDER BY action")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []string
	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

// StatsByTable returns entry counts per table.
func (l *Logger) StatsByTable(ctx context.Context) (map[string]int64, error) {
	rows, err := l.pool.Query(ctx, "SELECT table_name, COUNT(*) FROM audit_logs GROUP BY table_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var table string
		var count int64
		if err := rows.Scan(&table, &count); err != nil {
			return nil, err
		}
		stats[table] = count
	}
	return stats, rows.Err()
}

func marshalValues(values map[string]any) ([]byte, error) {
	if values == nil {
		return nil, nil
	}
	return json.Marshal(values)
}

func unmarshalValues(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}
