// Package connect provides the Connect RPC surface of the player.
package connect

import (
	"context"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/19player/internal/app/notification"
	"github.com/osa030/19player/internal/app/session"
)

// ServiceName is the fully-qualified name of the player service.
const ServiceName = "player.v1.PlayerService"

// Procedure paths of the player service.
const (
	GetSnapshotProcedure   = "/" + ServiceName + "/GetSnapshot"
	ListTracksProcedure    = "/" + ServiceName + "/ListTracks"
	SearchProcedure        = "/" + ServiceName + "/Search"
	SelectProcedure        = "/" + ServiceName + "/Select"
	PlayProcedure          = "/" + ServiceName + "/Play"
	PauseProcedure         = "/" + ServiceName + "/Pause"
	ToggleProcedure        = "/" + ServiceName + "/Toggle"
	NextProcedure          = "/" + ServiceName + "/Next"
	PreviousProcedure      = "/" + ServiceName + "/Previous"
	ToggleShuffleProcedure = "/" + ServiceName + "/ToggleShuffle"
	SeekProcedure          = "/" + ServiceName + "/Seek"
	BeginScrubProcedure    = "/" + ServiceName + "/BeginScrub"
	MoveScrubProcedure     = "/" + ServiceName + "/MoveScrub"
	EndScrubProcedure      = "/" + ServiceName + "/EndScrub"
	SubscribeProcedure     = "/" + ServiceName + "/Subscribe"
)

type (
	request  = connect.Request[structpb.Struct]
	response = connect.Response[structpb.Struct]
)

// PlayerService implements the PlayerService RPC.
type PlayerService struct {
	session *session.Manager
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(session *session.Manager) *PlayerService {
	return &PlayerService{session: session}
}

// NewHandler builds the HTTP handler for the service and returns the path
// it should be mounted on.
func NewHandler(svc *PlayerService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	unary := map[string]func(context.Context, *request) (*response, error){
		GetSnapshotProcedure:   svc.GetSnapshot,
		ListTracksProcedure:    svc.ListTracks,
		SearchProcedure:        svc.Search,
		SelectProcedure:        svc.Select,
		PlayProcedure:          svc.control(svc.session.Play),
		PauseProcedure:         svc.control(svc.session.Pause),
		ToggleProcedure:        svc.control(svc.session.Toggle),
		NextProcedure:          svc.control(svc.session.Next),
		PreviousProcedure:      svc.control(svc.session.Previous),
		ToggleShuffleProcedure: svc.control(func() { svc.session.ToggleShuffle() }),
		SeekProcedure:          svc.Seek,
		BeginScrubProcedure:    svc.BeginScrub,
		MoveScrubProcedure:     svc.MoveScrub,
		EndScrubProcedure:      svc.control(svc.session.EndScrub),
	}
	for procedure, fn := range unary {
		mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
	}
	mux.Handle(SubscribeProcedure, connect.NewServerStreamHandler(SubscribeProcedure, svc.Subscribe, opts...))
	return "/" + ServiceName + "/", mux
}

// GetSnapshot returns the current session snapshot.
func (s *PlayerService) GetSnapshot(
	ctx context.Context,
	req *request,
) (*response, error) {
	return s.snapshotResponse()
}

// ListTracks returns the whole catalog in order.
func (s *PlayerService) ListTracks(
	ctx context.Context,
	req *request,
) (*response, error) {
	msg, err := newStruct(map[string]any{
		"query":   "",
		"entries": entryValues(s.session.Tracks()),
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// Search ranks the catalog and publishes the list to subscribers.
func (s *PlayerService) Search(
	ctx context.Context,
	req *request,
) (*response, error) {
	query, err := stringField(req.Msg, "query")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	msg, err := encodeList(s.session.Search(query))
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// Select jumps to a track by identifier.
func (s *PlayerService) Select(
	ctx context.Context,
	req *request,
) (*response, error) {
	id, err := stringField(req.Msg, "id")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	s.session.Select(id)
	return s.snapshotResponse()
}

// Seek moves the playback position.
func (s *PlayerService) Seek(
	ctx context.Context,
	req *request,
) (*response, error) {
	return s.gesture(req, s.session.Seek)
}

// BeginScrub starts a seek gesture. While it is active the snapshot progress
// follows the gesture instead of the reported position.
func (s *PlayerService) BeginScrub(
	ctx context.Context,
	req *request,
) (*response, error) {
	return s.gesture(req, s.session.BeginScrub)
}

// MoveScrub moves an active seek gesture.
func (s *PlayerService) MoveScrub(
	ctx context.Context,
	req *request,
) (*response, error) {
	return s.gesture(req, s.session.MoveScrub)
}

func (s *PlayerService) gesture(req *request, op func(float64)) (*response, error) {
	fraction, err := seekFraction(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	op(fraction)
	return s.snapshotResponse()
}

// control wraps an argument-less session operation.
func (s *PlayerService) control(op func()) func(context.Context, *request) (*response, error) {
	return func(ctx context.Context, req *request) (*response, error) {
		op()
		return s.snapshotResponse()
	}
}

func (s *PlayerService) snapshotResponse() (*response, error) {
	msg, err := encodeSnapshot(s.session.Snapshot())
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// Subscribe streams the initial snapshot and list, then every broadcast.
func (s *PlayerService) Subscribe(
	ctx context.Context,
	req *request,
	stream *connect.ServerStream[structpb.Struct],
) error {
	adapter := &notificationStreamAdapter{stream: stream}
	subscriptionID, err := s.session.Subscribe(adapter)
	if err != nil {
		return connect.NewError(connect.CodeUnavailable, err)
	}
	zlog.Debug().Msgf("rpc: subscribe: id=%s", subscriptionID)

	// Wait for context cancellation or session end
	select {
	case <-ctx.Done():
	case <-s.session.Done():
	}

	s.session.Unsubscribe(subscriptionID)
	adapter.close()
	return nil
}

var errStreamClosed = errors.New("stream closed")

// notificationStreamAdapter adapts connect.ServerStream to notification.Stream.
// Sends are serialized and refused once the handler has returned.
type notificationStreamAdapter struct {
	mu     sync.Mutex
	stream *connect.ServerStream[structpb.Struct]
	closed bool
}

func (a *notificationStreamAdapter) Send(n *notification.Notification) error {
	msg, err := encodeNotification(n)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return errStreamClosed
	}
	return a.stream.Send(msg)
}

func (a *notificationStreamAdapter) close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}
