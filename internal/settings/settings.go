// Package settings stores typed system settings and serves them through a
// TTL cache.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
	"github.com/ariefcatur/go-marketplace-orders/internal/postgres"
)

type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeJSON    Type = "json"
)

func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeJSON:
		return true
	}
	return false
}

const KeyLowStockThreshold = "low_stock_threshold"

var ErrNotFound = apperr.NotFound("setting")

type Setting struct {
	Key         string    `json:"setting"`
	Value       any       `json:"value"`
	Type        Type      `json:"type"`
	Description *string   `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input is a settings write. Value is the JSON value as sent by the client.
type Input struct {
	Value       json.RawMessage `json:"value"`
	Type        Type            `json:"type"`
	Description *string         `json:"description"`
}

// encode validates in and returns the stored text form of its value.
func (in Input) encode() (Type, string, error) {
	if len(bytes.TrimSpace(in.Value)) == 0 {
		return "", "", apperr.Validation("value is required")
	}
	t := in.Type
	if t == "" {
		t = TypeString
	}
	if !t.Valid() {
		return "", "", apperr.Validation("invalid setting type")
	}

	switch t {
	case TypeJSON:
		var buf bytes.Buffer
		if err := json.Compact(&buf, in.Value); err != nil {
			return "", "", apperr.Validation("value is not valid json")
		}
		return t, buf.String(), nil
	case TypeNumber:
		s := unquote(in.Value)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return "", "", apperr.Validation("value must be a number")
		}
		return t, s, nil
	case TypeBoolean:
		s := unquote(in.Value)
		if _, err := strconv.ParseBool(s); err != nil {
			return "", "", apperr.Validation("value must be a boolean")
		}
		return t, s, nil
	}
	return t, unquote(in.Value), nil
}

// unquote turns a JSON string into its text and leaves any other JSON
// literal as written.
func unquote(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// decode converts stored text to its typed value. Text that does not parse
// is returned as a string.
func decode(raw string, t Type) any {
	switch t {
	case TypeNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case TypeBoolean:
		return raw == "true"
	case TypeJSON:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return raw
}

// Store reads and writes the system_settings table.
type Store struct {
	DB postgres.DBTX
}

const settingColumns = `setting_key, setting_value, setting_type, description, updated_at`

func (s *Store) Get(ctx context.Context, key string) (Setting, error) {
	st, err := scanSetting(s.DB.QueryRow(ctx, `SELECT `+settingColumns+` FROM system_settings WHERE setting_key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Setting{}, ErrNotFound
		}
		return Setting{}, fmt.Errorf("select setting: %w", err)
	}
	return st, nil
}

func (s *Store) All(ctx context.Context) ([]Setting, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+settingColumns+` FROM system_settings ORDER BY setting_key`)
	if err != nil {
		return nil, fmt.Errorf("select settings: %w", err)
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		st, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Put upserts key. A nil description keeps the stored one.
func (s *Store) Put(ctx context.Context, key string, in Input) (Setting, error) {
	if key == "" {
		return Setting{}, apperr.Validation("setting key is required")
	}
	t, raw, err := in.encode()
	if err != nil {
		return Setting{}, err
	}

	st, err := scanSetting(s.DB.QueryRow(ctx, `
		INSERT INTO system_settings(setting_key, setting_value, setting_type, description, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (setting_key) DO UPDATE
		SET setting_value = EXCLUDED.setting_value,
		    setting_type = EXCLUDED.setting_type,
		    description = COALESCE(EXCLUDED.description, system_settings.description),
		    updated_at = now()
		RETURNING `+settingColumns, key, raw, string(t), in.Description))
	if err != nil {
		return Setting{}, fmt.Errorf("upsert setting: %w", err)
	}
	return st, nil
}

func scanSetting(row pgx.Row) (Setting, error) {
	var (
		st  Setting
		raw string
		t   string
	)
	if err := row.Scan(&st.Key, &raw, &t, &st.Description, &st.UpdatedAt); err != nil {
		return Setting{}, err
	}
	st.Type = Type(t)
	st.Value = decode(raw, st.Type)
	return st, nil
}
