// Package rpc exposes the command dispatcher as a Connect service.
//
// The service has a single unary procedure, Execute, carrying a command name
// and JSON arguments. Messages are plain JSON structs, so both ends register
// the JSON codec in this package instead of the protobuf codecs.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/command"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

const (
	// ServiceName is the fully-qualified name of the treasury service.
	ServiceName = "ibimina.v1.TreasuryService"

	// ExecuteProcedure is the full path of the Execute RPC.
	ExecuteProcedure = "/" + ServiceName + "/Execute"

	// ErrorKindHeader carries the models.Kind of a failed call.
	ErrorKindHeader = "Ibimina-Error-Kind"
)

// ExecuteRequest names a command and its arguments.
type ExecuteRequest struct {
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// ExecuteResponse holds the command result as JSON.
type ExecuteResponse struct {
	Result json.RawMessage `json:"result"`
}

// Executor runs commands. *command.Dispatcher implements it.
type Executor interface {
	Execute(ctx context.Context, cmd command.Command) (json.RawMessage, error)
}

// jsonCodec marshals messages with encoding/json. It registers under the
// "json" name so Connect serves application/json requests with it.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// WithJSON registers the JSON codec on a handler or client.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}

// NewHandler builds the HTTP handler for the treasury service. It returns
// the path on which to mount the handler and the handler itself.
func NewHandler(exec Executor, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	handler := connect.NewUnaryHandler(
		ExecuteProcedure,
		func(ctx context.Context, req *connect.Request[ExecuteRequest]) (*connect.Response[ExecuteResponse], error) {
			result, err := exec.Execute(ctx, command.Command{
				Name: req.Msg.Command,
				Args: req.Msg.Args,
			})
			if err != nil {
				return nil, toConnectError(req.Msg.Command, err)
			}
			return connect.NewResponse(&ExecuteResponse{Result: result}), nil
		},
		opts...,
	)
	return ExecuteProcedure, handler
}

// codeFor maps an error kind to its Connect status code.
func codeFor(kind models.Kind) connect.Code {
	switch kind {
	case models.KindValidation:
		return connect.CodeInvalidArgument
	case models.KindInvalidStateTransition, models.KindIncompleteSelection:
		return connect.CodeFailedPrecondition
	case models.KindCapacityExceeded:
		return connect.CodeResourceExhausted
	case models.KindNotFound:
		return connect.CodeNotFound
	case models.KindConflict:
		return connect.CodeAborted
	default:
		return connect.CodeInternal
	}
}

// errInternal replaces the detail of unclassified failures on the wire.
var errInternal = errors.New("internal error")

// toConnectError converts a command failure. Domain errors keep their
// message; anything else is logged here and sent as a generic internal error.
func toConnectError(name string, err error) *connect.Error {
	kind := models.KindOf(err)
	code := codeFor(kind)

	var cerr *connect.Error
	if code == connect.CodeInternal {
		slog.Error("Command failed", "command", name, "error", err)
		cerr = connect.NewError(code, errInternal)
	} else {
		cerr = connect.NewError(code, err)
	}
	cerr.Meta().Set(ErrorKindHeader, string(kind))
	return cerr
}

// KindFromError recovers the models.Kind a server attached to err. Errors
// that did not come from the treasury service are KindUnknown.
func KindFromError(err error) models.Kind {
	if err == nil {
		return ""
	}
	cerr := new(connect.Error)
	if !errors.As(err, &cerr) {
		return models.KindUnknown
	}
	if kind := cerr.Meta().Get(ErrorKindHeader); kind != "" {
		return models.Kind(kind)
	}
	return models.KindUnknown
}

// Client calls the treasury service.
type Client struct {
	execute *connect.Client[ExecuteRequest, ExecuteResponse]
}

// NewClient creates a Client for the server at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &Client{
		execute: connect.NewClient[ExecuteRequest, ExecuteResponse](httpClient, baseURL+ExecuteProcedure, opts...),
	}
}

// Execute runs a command remotely. args is JSON-encoded and the result, when
// out is non-nil, is decoded into out. header is sent with the request.
func (c *Client) Execute(ctx context.Context, name string, args any, out any, header http.Header) error {
	req := connect.NewRequest(&ExecuteRequest{Command: name})
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("failed to encode %s arguments: %w", name, err)
		}
		req.Msg.Args = raw
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header().Add(k, v)
		}
	}

	resp, err := c.execute.CallUnary(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Msg.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", name, err)
	}
	return nil
}
