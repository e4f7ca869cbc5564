package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/nadzzz/jarvis/internal/message"
)

// codecName is the content subtype the service is spoken in.
const codecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return codecName }

// Register adds srv to s under ServiceName.
func Register(s grpc.ServiceRegistrar, srv CommandsServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CommandsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Dispatch", Handler: dispatchHandler},
		{MethodName: "Confirm", Handler: confirmHandler},
		{MethodName: "Status", Handler: statusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jarvis/v1/commands",
}

func dispatchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.CommandRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandsServer).Dispatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Dispatch"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(CommandsServer).Dispatch(ctx, req.(*message.CommandRequest))
	})
}

func confirmHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.ConfirmRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandsServer).Confirm(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Confirm"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(CommandsServer).Confirm(ctx, req.(*message.ConfirmRequest))
	})
}

func statusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandsServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Status"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(CommandsServer).Status(ctx, req.(*StatusRequest))
	})
}

// Client calls the jarvis.v1.Commands service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, grpc.CallContentSubtype(codecName))
}

// Dispatch submits a command.
func (c *Client) Dispatch(ctx context.Context, req *message.CommandRequest) (*DispatchReply, error) {
	out := new(DispatchReply)
	if err := c.invoke(ctx, "Dispatch", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Confirm resolves a pending confirmation.
func (c *Client) Confirm(ctx context.Context, req *message.ConfirmRequest) (*message.ConfirmResult, error) {
	out := new(message.ConfirmResult)
	if err := c.invoke(ctx, "Confirm", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Status fetches the system status snapshot.
func (c *Client) Status(ctx context.Context) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.invoke(ctx, "Status", &StatusRequest{}, out); err != nil {
		return nil, err
	}
	return out, nil
}
