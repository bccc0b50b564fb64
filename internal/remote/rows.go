package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/RichardoC/humaniza/internal/models"
)

// rowID accepts both uuid (string) and bigint (number) primary keys.
type rowID string

func (id *rowID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = rowID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*id = rowID(n.String())
	}
	return nil
}

// row is the wire shape of a history row.
type row struct {
	ID            rowID  `json:"id,omitempty"`
	UserID        string `json:"user_id"`
	OriginalText  string `json:"original_text"`
	HumanizedText string `json:"humanized_text"`
	Mode          string `json:"mode"`
	CreatedAt     string `json:"created_at"`
}

func (r row) record() (models.HistoryRecord, error) {
	rec := models.HistoryRecord{
		RemoteID:   string(r.ID),
		OwnerID:    r.UserID,
		SourceText: r.OriginalText,
		ResultText: r.HumanizedText,
		Mode:       models.Mode(r.Mode),
	}
	if r.CreatedAt != "" {
		t, err := models.ParseTimestamp(r.CreatedAt)
		if err != nil {
			return rec, fmt.Errorf("row %s has bad created_at %q: %w", r.ID, r.CreatedAt, err)
		}
		rec.CreatedAt = t
	}
	return rec, nil
}

func (c *Client) tablePath() string {
	return "/rest/v1/" + c.table
}

// Insert stores rec and returns the id the backend assigned.
func (c *Client) Insert(ctx context.Context, rec models.HistoryRecord) (string, error) {
	payload := []row{{
		UserID:        rec.OwnerID,
		OriginalText:  rec.SourceText,
		HumanizedText: rec.ResultText,
		Mode:          string(rec.Mode),
		CreatedAt:     models.FormatTimestamp(rec.CreatedAt),
	}}
	header := http.Header{"Prefer": []string{"return=representation"}}

	var created []row
	if err := c.do(ctx, http.MethodPost, c.tablePath(), nil, payload, accessToken(ctx), header, &created); err != nil {
		return "", fmt.Errorf("insert history row: %w", err)
	}
	if len(created) == 0 || created[0].ID == "" {
		return "", errors.New("insert history row: backend returned no id")
	}
	return string(created[0].ID), nil
}

// List returns the owner's rows, newest first.
func (c *Client) List(ctx context.Context, ownerID string) ([]models.HistoryRecord, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+ownerID)
	q.Set("order", "created_at.desc")

	var rows []row
	if err := c.do(ctx, http.MethodGet, c.tablePath(), q, nil, accessToken(ctx), nil, &rows); err != nil {
		return nil, fmt.Errorf("list history rows: %w", err)
	}

	records := make([]models.HistoryRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes one of the owner's rows by remote id.
func (c *Client) Delete(ctx context.Context, ownerID, remoteID string) error {
	q := url.Values{}
	q.Set("id", "eq."+remoteID)
	q.Set("user_id", "eq."+ownerID)
	if err := c.do(ctx, http.MethodDelete, c.tablePath(), q, nil, accessToken(ctx), nil, nil); err != nil {
		return fmt.Errorf("delete history row: %w", err)
	}
	return nil
}

// DeleteByOwner removes every row belonging to the owner.
func (c *Client) DeleteByOwner(ctx context.Context, ownerID string) error {
	q := url.Values{}
	q.Set("user_id", "eq."+ownerID)
	if err := c.do(ctx, http.MethodDelete, c.tablePath(), q, nil, accessToken(ctx), nil, nil); err != nil {
		return fmt.Errorf("clear history rows: %w", err)
	}
	return nil
}
