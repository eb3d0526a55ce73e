package connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a PlayerService client.
type Client struct {
	unary     map[string]*connect.Client[structpb.Struct, structpb.Struct]
	subscribe *connect.Client[structpb.Struct, structpb.Struct]
}

// NewClient creates a client for the service at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	procedures := []string{
		GetSnapshotProcedure, ListTracksProcedure, SearchProcedure, SelectProcedure,
		PlayProcedure, PauseProcedure, ToggleProcedure, NextProcedure, PreviousProcedure,
		ToggleShuffleProcedure, SeekProcedure, BeginScrubProcedure, MoveScrubProcedure, EndScrubProcedure,
	}
	c := &Client{unary: make(map[string]*connect.Client[structpb.Struct, structpb.Struct], len(procedures))}
	for _, p := range procedures {
		c.unary[p] = connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+p, opts...)
	}
	c.subscribe = connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+SubscribeProcedure, opts...)
	return c
}

func (c *Client) call(ctx context.Context, procedure string, fields map[string]any) (*structpb.Struct, error) {
	req, err := newStruct(fields)
	if err != nil {
		return nil, err
	}
	resp, err := c.unary[procedure].CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", procedure)
	}
	return resp.Msg, nil
}

func (c *Client) snapshot(ctx context.Context, procedure string, fields map[string]any) (*SnapshotMessage, error) {
	msg, err := c.call(ctx, procedure, fields)
	if err != nil {
		return nil, err
	}
	var out SnapshotMessage
	if err := decode(msg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) list(ctx context.Context, procedure string, fields map[string]any) (*ListMessage, error) {
	msg, err := c.call(ctx, procedure, fields)
	if err != nil {
		return nil, err
	}
	var out ListMessage
	if err := decode(msg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSnapshot returns the current session snapshot.
func (c *Client) GetSnapshot(ctx context.Context) (*SnapshotMessage, error) {
	return c.snapshot(ctx, GetSnapshotProcedure, nil)
}

// ListTracks returns the catalog.
func (c *Client) ListTracks(ctx context.Context) (*ListMessage, error) {
	return c.list(ctx, ListTracksProcedure, nil)
}

// Search ranks the catalog against query.
func (c *Client) Search(ctx context.Context, query string) (*ListMessage, error) {
	return c.list(ctx, SearchProcedure, map[string]any{"query": query})
}

// Select jumps to a track.
func (c *Client) Select(ctx context.Context, id string) (*SnapshotMessage, error) {
	return c.snapshot(ctx, SelectProcedure, map[string]any{"id": id})
}

// Play resumes playback.
func (c *Client) Play(ctx context.Context) (*SnapshotMessage, error) {
	return c.snapshot(ctx, PlayProcedure, nil)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) (*SnapshotMessage, error) {
	return c.snapshot(ctx, PauseProcedure, nil)
}

// Toggle flips play/pause.
func (c *Client) Toggle(ctx context.Context) (*SnapshotMessage, error) {
	return c.snapshot(ctx, ToggleProcedure, nil)
}

// Next advances to the next track.
func (c *Client) Next(ctx context.Context) (*SnapshotMessage, error) {
	return c.snapshot(ctx, NextProcedure, nil)
}

// Previous goes back one track.
func (c *Client) Previous(ctx context.Context) (*SnapshotMessage, error) {
	return c.snapshot(ctx, PreviousProcedure, nil)
}

// ToggleShuffle flips shuffle mode.
func (c *Client) ToggleShuffle(ctx context.Context) (*SnapshotMessage, error) {
	return c.snapshot(ctx, ToggleShuffleProcedure, nil)
}

// Seek moves to a fraction of the current track.
func (c *Client) Seek(ctx context.Context, fraction float64) (*SnapshotMessage, error) {
	return c.snapshot(ctx, SeekProcedure, map[string]any{"fraction": fraction})
}

// BeginScrub starts a seek gesture at fraction.
func (c *Client) BeginScrub(ctx context.Context, fraction float64) (*SnapshotMessage, error) {
	return c.snapshot(ctx, BeginScrubProcedure, map[string]any{"fraction": fraction})
}

// MoveScrub moves the active seek gesture to fraction.
func (c *Client) MoveScrub(ctx context.Context, fraction float64) (*SnapshotMessage, error) {
	return c.snapshot(ctx, MoveScrubProcedure, map[string]any{"fraction": fraction})
}

// EndScrub finishes the seek gesture.
func (c *Client) EndScrub(ctx context.Context) (*SnapshotMessage, error) {
	return c.snapshot(ctx, EndScrubProcedure, nil)
}

// Subscribe calls fn for every notification until ctx is done, the stream
// ends, or fn returns an error.
func (c *Client) Subscribe(ctx context.Context, fn func(*NotificationMessage) error) error {
	stream, err := c.subscribe.CallServerStream(ctx, connect.NewRequest(&structpb.Struct{}))
	if err != nil {
		return errors.Wrap(err, "failed to subscribe")
	}
	defer stream.Close()

	for stream.Receive() {
		var n NotificationMessage
		if err := decode(stream.Msg(), &n); err != nil {
			return err
		}
		if err := fn(&n); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil && connect.CodeOf(err) != connect.CodeCanceled {
		return errors.Wrap(err, "stream failed")
	}
	return nil
}
