package grpc

// proto.go defines the gRPC server interface for bib.deadstock.v1.DeadStockService.
// It stands in for buf-generated code; messages travel with the json codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/bib/services/deadstock-service/internal/application/dto"
)

// ListProductsRequest is empty; products come from the configured source.
type ListProductsRequest struct{}

// ListProductsResponse carries one record per product.
type ListProductsResponse struct {
	Products []dto.ProductRecord `json:"products"`
}

// GetSummaryRequest is empty.
type GetSummaryRequest struct{}

// GetSummaryResponse carries the dashboard KPIs.
type GetSummaryResponse struct {
	Summary dto.SummaryResponse `json:"summary"`
}

// GetRiskByCategoryRequest is empty.
type GetRiskByCategoryRequest struct{}

// GetDeadStockOverTimeRequest is empty.
type GetDeadStockOverTimeRequest struct{}

// ChartResponse carries a labelled series.
type ChartResponse struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// GetModelRequest is empty.
type GetModelRequest struct{}

// TrainModelRequest is empty; training always uses the full product set.
type TrainModelRequest struct{}

// ModelResponse describes the served model.
type ModelResponse struct {
	Model dto.ModelInfoResponse `json:"model"`
}

// DeadStockServiceServer is the server API for DeadStockService.
type DeadStockServiceServer interface {
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	GetSummary(context.Context, *GetSummaryRequest) (*GetSummaryResponse, error)
	GetRiskByCategory(context.Context, *GetRiskByCategoryRequest) (*ChartResponse, error)
	GetDeadStockOverTime(context.Context, *GetDeadStockOverTimeRequest) (*ChartResponse, error)
	GetModel(context.Context, *GetModelRequest) (*ModelResponse, error)
	TrainModel(context.Context, *TrainModelRequest) (*ModelResponse, error)
	mustEmbedUnimplementedDeadStockServiceServer()
}

// UnimplementedDeadStockServiceServer provides forward-compatible default implementations.
type UnimplementedDeadStockServiceServer struct{}

func (UnimplementedDeadStockServiceServer) ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListProducts not implemented")
}
func (UnimplementedDeadStockServiceServer) GetSummary(context.Context, *GetSummaryRequest) (*GetSummaryResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetSummary not implemented")
}
func (UnimplementedDeadStockServiceServer) GetRiskByCategory(context.Context, *GetRiskByCategoryRequest) (*ChartResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetRiskByCategory not implemented")
}
func (UnimplementedDeadStockServiceServer) GetDeadStockOverTime(context.Context, *GetDeadStockOverTimeRequest) (*ChartResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetDeadStockOverTime not implemented")
}
func (UnimplementedDeadStockServiceServer) GetModel(context.Context, *GetModelRequest) (*ModelResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetModel not implemented")
}
func (UnimplementedDeadStockServiceServer) TrainModel(context.Context, *TrainModelRequest) (*ModelResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method TrainModel not implemented")
}
func (UnimplementedDeadStockServiceServer) mustEmbedUnimplementedDeadStockServiceServer() {}

// RegisterDeadStockServiceServer registers the DeadStockServiceServer with the gRPC server.
func RegisterDeadStockServiceServer(s *grpclib.Server, srv DeadStockServiceServer) {
	s.RegisterService(&_DeadStockService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _DeadStockService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: "bib.deadstock.v1.DeadStockService",
	HandlerType: (*DeadStockServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "ListProducts", Handler: _DeadStockService_ListProducts_Handler}, //nolint:revive // gRPC handler registration
		{MethodName: "GetSummary", Handler: _DeadStockService_GetSummary_Handler}, //nolint:revive // gRPC handler registration
		{MethodName: "GetRiskByCategory", Handler: _DeadStockService_GetRiskByCategory_Handler}, //nolint:revive // gRPC handler registration
		{MethodName: "GetDeadStockOverTime", Handler: _DeadStockService_GetDeadStockOverTime_Handler}, //nolint:revive // gRPC handler registration
		{MethodName: "GetModel", Handler: _DeadStockService_GetModel_Handler}, //nolint:revive // gRPC handler registration
		{MethodName: "TrainModel", Handler: _DeadStockService_TrainModel_Handler}, //nolint:revive // gRPC handler registration
	},
	Streams: []grpclib.StreamDesc{},
}

//nolint:revive,errcheck // gRPC handler registration
func _DeadStockService_ListProducts_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListProductsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeadStockServiceServer).ListProducts(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.deadstock.v1.DeadStockService/ListProducts",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeadStockServiceServer).ListProducts(ctx, req.(*ListProductsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _DeadStockService_GetSummary_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetSummaryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeadStockServiceServer).GetSummary(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.deadstock.v1.DeadStockService/GetSummary",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeadStockServiceServer).GetSummary(ctx, req.(*GetSummaryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _DeadStockService_GetRiskByCategory_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetRiskByCategoryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeadStockServiceServer).GetRiskByCategory(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.deadstock.v1.DeadStockService/GetRiskByCategory",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeadStockServiceServer).GetRiskByCategory(ctx, req.(*GetRiskByCategoryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _DeadStockService_GetDeadStockOverTime_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetDeadStockOverTimeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeadStockServiceServer).GetDeadStockOverTime(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.deadstock.v1.DeadStockService/GetDeadStockOverTime",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeadStockServiceServer).GetDeadStockOverTime(ctx, req.(*GetDeadStockOverTimeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _DeadStockService_GetModel_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetModelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeadStockServiceServer).GetModel(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.deadstock.v1.DeadStockService/GetModel",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeadStockServiceServer).GetModel(ctx, req.(*GetModelRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _DeadStockService_TrainModel_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(TrainModelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeadStockServiceServer).TrainModel(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.deadstock.v1.DeadStockService/TrainModel",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeadStockServiceServer).TrainModel(ctx, req.(*TrainModelRequest))
	}
	return interceptor(ctx, in, info, handler)
}
