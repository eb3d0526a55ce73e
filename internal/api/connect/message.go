package connect

import (
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/19player/internal/app/notification"
	"github.com/osa030/19player/internal/app/playback"
	"github.com/osa030/19player/internal/app/search"
)

// ErrInvalidMessage is returned when a message lacks a required field or has
// one of the wrong type.
var ErrInvalidMessage = errors.New("invalid message")

// SnapshotMessage is the wire form of a session snapshot.
type SnapshotMessage struct {
	TrackID       string  `mapstructure:"track_id"`
	DisplayName   string  `mapstructure:"display_name"`
	State         string  `mapstructure:"state"`
	Position      float64 `mapstructure:"position"`
	Duration      float64 `mapstructure:"duration"`
	DurationKnown bool    `mapstructure:"duration_known"`
	Scrubbing     bool    `mapstructure:"scrubbing"`
	Progress      float64 `mapstructure:"progress"`
	Elapsed       string  `mapstructure:"elapsed"`
	Total         string  `mapstructure:"total"`
	Generation    uint64  `mapstructure:"generation"`
	Index         int     `mapstructure:"index"`
	Shuffle       bool    `mapstructure:"shuffle"`
	Count         int     `mapstructure:"count"`
}

// EntryMessage is the wire form of a list row.
type EntryMessage struct {
	Index       int    `mapstructure:"index"`
	ID          string `mapstructure:"id"`
	DisplayName string `mapstructure:"display_name"`
}

// ListMessage is the wire form of a rendered list.
type ListMessage struct {
	Query   string         `mapstructure:"query"`
	Entries []EntryMessage `mapstructure:"entries"`
}

// NotificationMessage is the wire form of a subscription notification.
type NotificationMessage struct {
	SequenceNo uint64           `mapstructure:"sequence_no"`
	Kind       string           `mapstructure:"kind"`
	Snapshot   *SnapshotMessage `mapstructure:"snapshot"`
	List       *ListMessage     `mapstructure:"list"`
}

func snapshotFields(s *notification.Snapshot) map[string]any {
	p := s.Playback
	return map[string]any{
		"track_id":       p.TrackID,
		"display_name":   p.DisplayName,
		"state":          p.State.String(),
		"position":       p.Position,
		"duration":       p.Duration,
		"duration_known": p.DurationKnown,
		"scrubbing":      p.Scrubbing,
		"progress":       p.Progress,
		"elapsed":        p.Elapsed(),
		"total":          p.Total(),
		"generation":     p.Generation,
		"index":          s.Index,
		"shuffle":        s.Shuffle,
		"count":          s.Count,
	}
}

func listFields(l *notification.List) map[string]any {
	return map[string]any{
		"query":   l.Query,
		"entries": entryValues(l.Entries),
	}
}

func entryValues(entries []search.Entry) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{
			"index":        e.Index,
			"id":           e.ID,
			"display_name": e.DisplayName,
		}
	}
	return out
}

func encodeSnapshot(s *notification.Snapshot) (*structpb.Struct, error) {
	return newStruct(snapshotFields(s))
}

func encodeList(l *notification.List) (*structpb.Struct, error) {
	return newStruct(listFields(l))
}

func encodeNotification(n *notification.Notification) (*structpb.Struct, error) {
	fields := map[string]any{
		"sequence_no": n.SequenceNo,
		"kind":        n.Kind.String(),
	}
	if n.Snapshot != nil {
		fields["snapshot"] = snapshotFields(n.Snapshot)
	}
	if n.List != nil {
		fields["list"] = listFields(n.List)
	}
	return newStruct(fields)
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode message")
	}
	return s, nil
}

// decode converts a struct message into out using its mapstructure tags.
func decode(s *structpb.Struct, out any) error {
	if err := mapstructure.Decode(s.AsMap(), out); err != nil {
		return errors.Mark(errors.Wrap(err, "failed to decode message"), ErrInvalidMessage)
	}
	return nil
}

// stringField returns a required string field.
func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", errors.Wrapf(ErrInvalidMessage, "missing field %q", name)
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", errors.Wrapf(ErrInvalidMessage, "field %q is not a string", name)
	}
	return str.StringValue, nil
}

// numberField returns a number field and whether it was present.
func numberField(s *structpb.Struct, name string) (float64, bool, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, false, nil
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, true, errors.Wrapf(ErrInvalidMessage, "field %q is not a number", name)
	}
	return num.NumberValue, true, nil
}

// seekFraction reads either a fraction or a raw gesture (x, left, width).
func seekFraction(s *structpb.Struct) (float64, error) {
	fraction, ok, err := numberField(s, "fraction")
	if err != nil {
		return 0, err
	}
	if ok {
		return fraction, nil
	}

	x, okX, err := numberField(s, "x")
	if err != nil {
		return 0, err
	}
	width, okW, err := numberField(s, "width")
	if err != nil {
		return 0, err
	}
	left, _, err := numberField(s, "left")
	if err != nil {
		return 0, err
	}
	if !okX || !okW {
		return 0, errors.Wrap(ErrInvalidMessage, "fraction or x and width are required")
	}
	return playback.GestureFraction(x, left, width), nil
}
