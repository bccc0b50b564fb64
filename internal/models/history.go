package models

import "time"

// HistoryRecord is one saved rewrite. LocalID is zero for records read from the
// remote store; RemoteID is empty for records that were never mirrored.
type HistoryRecord struct {
	LocalID    int64     `json:"id,omitempty"`
	RemoteID   string    `json:"cloud_id,omitempty"`
	OwnerID    string    `json:"user_id"`
	SourceText string    `json:"original_text"`
	ResultText string    `json:"humanized_text"`
	Mode       Mode      `json:"mode"`
	CreatedAt  time.Time `json:"created_at"`
}

// TimestampLayout is the fixed-width ISO-8601 form used for created_at in both
// stores, so lexical order matches chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout as well as any RFC 3339 value, which is
// what PostgREST returns for timestamptz columns.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
