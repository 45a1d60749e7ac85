// Package mailbox keeps the most recent start / percent / model command for a
// short time so that polling pages can pick it up.
package mailbox

import (
	"context"
	"fmt"
	"time"
)

const DefaultTTL = 5 * time.Second

type Kind string

const (
	Start   Kind = "start"
	Percent Kind = "percent"
	Model   Kind = "model"
)

var Kinds = []Kind{Start, Percent, Model}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown command kind %q", s)
}

// Entry is a stored payload; its JSON form is the payload object plus a
// timestamp field.
type Entry map[string]any

func (e Entry) Timestamp() string {
	ts, _ := e["timestamp"].(string)
	return ts
}

// Recent maps every kind to its live entry, or nil when empty or expired.
type Recent map[Kind]Entry

type Store interface {
	Put(ctx context.Context, kind Kind, payload map[string]any) (Entry, error)
	Recent(ctx context.Context) (Recent, error)
}

func newEntry(payload map[string]any, now time.Time) Entry {
	e := make(Entry, len(payload)+1)
	for k, v := range payload {
		e[k] = v
	}
	e["timestamp"] = now.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	return e
}

func emptyRecent() Recent {
	r := make(Recent, len(Kinds))
	for _, k := range Kinds {
		r[k] = nil
	}
	return r
}
