package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName   = "lexseg.Segmenter"
	segmentMethod = "/lexseg.Segmenter/Segment"

	fieldLine       = "line"
	fieldSegText    = "seg_text"
	fieldBoundaries = "boundaries"
	fieldWords      = "words"
)

// #region desc
// SegmenterServer is the server side of lexseg.Segmenter.
type SegmenterServer interface {
	Segment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes lexseg.Segmenter for grpc.Server.RegisterService.
// Requests and responses are structpb.Struct values.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SegmenterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Segment", Handler: segmentHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lexseg/segmenter.proto",
}

func segmentHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SegmenterServer).Segment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: segmentMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SegmenterServer).Segment(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Register adds srv to s.
func Register(s *grpc.Server, srv SegmenterServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// #endregion desc
