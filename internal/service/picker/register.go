package picker

import (
	"context"

	"google.golang.org/grpc"

	"github.com/KevDevLee/namens-tinder/internal/auth"
	"github.com/KevDevLee/namens-tinder/internal/db"
	svcErr "github.com/KevDevLee/namens-tinder/internal/errors"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "namepicker.NamePicker"

// PublicMethods are callable without a bearer token.
var PublicMethods = []string{
	"/" + ServiceName + "/SignUp",
	"/" + ServiceName + "/SignIn",
}

// Registrar ties the NamePicker service into the gRPC server
type Registrar struct {
	server *GRPCServer
}

// NewRegistrar creates a new Registrar for the NamePicker service
func NewRegistrar(svc *Service, authSvc *auth.Service) *Registrar {
	return &Registrar{server: &GRPCServer{svc: svc, auth: authSvc}}
}

// Register attaches the NamePicker implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(&ServiceDesc, r.server)
}

// NamePickerServer is the server API of namepicker.NamePicker.
type NamePickerServer interface {
	SignUp(context.Context, *SignUpRequest) (*SessionResponse, error)
	SignIn(context.Context, *SignInRequest) (*SessionResponse, error)
	AddName(context.Context, *AddNameRequest) (*db.Name, error)
	ListNames(context.Context, *ListNamesRequest) (*ListNamesResponse, error)
	RecordDecision(context.Context, *RecordDecisionRequest) (*DecisionResponse, error)
	ClearDecision(context.Context, *ClearDecisionRequest) (*Empty, error)
	DeleteDecision(context.Context, *DeleteDecisionRequest) (*DecisionResponse, error)
	ListMyDecisions(context.Context, *Empty) (*MyDecisions, error)
	ListPartnerDecisions(context.Context, *Empty) (*PartnerDecisions, error)
	ListMatches(context.Context, *Empty) (*Matches, error)
	Stats(context.Context, *Empty) (*Stats, error)
	GetPreferences(context.Context, *Empty) (*PreferencesMessage, error)
	SavePreferences(context.Context, *PreferencesMessage) (*PreferencesMessage, error)
	ConsumeReload(context.Context, *Empty) (*ReloadResponse, error)
	StartSwipe(context.Context, *Empty) (*SwipeResponse, error)
	SwipeCurrent(context.Context, *Empty) (*SwipeResponse, error)
	SwipeDrag(context.Context, *SwipeDragRequest) (*SwipeResponse, error)
	SwipeGesture(context.Context, *SwipeGestureRequest) (*SwipeResponse, error)
	SwipeDecide(context.Context, *SwipeDecideRequest) (*SwipeResponse, error)
	SwipeComplete(context.Context, *Empty) (*SwipeResponse, error)
	SwipeUndo(context.Context, *Empty) (*SwipeResponse, error)
}

// ServiceDesc describes namepicker.NamePicker. Messages are the Go structs in
// messages.go, carried by the JSON codec.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NamePickerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SignUp", NamePickerServer.SignUp),
		unary("SignIn", NamePickerServer.SignIn),
		unary("AddName", NamePickerServer.AddName),
		unary("ListNames", NamePickerServer.ListNames),
		unary("RecordDecision", NamePickerServer.RecordDecision),
		unary("ClearDecision", NamePickerServer.ClearDecision),
		unary("DeleteDecision", NamePickerServer.DeleteDecision),
		unary("ListMyDecisions", NamePickerServer.ListMyDecisions),
		unary("ListPartnerDecisions", NamePickerServer.ListPartnerDecisions),
		unary("ListMatches", NamePickerServer.ListMatches),
		unary("Stats", NamePickerServer.Stats),
		unary("GetPreferences", NamePickerServer.GetPreferences),
		unary("SavePreferences", NamePickerServer.SavePreferences),
		unary("ConsumeReload", NamePickerServer.ConsumeReload),
		unary("StartSwipe", NamePickerServer.StartSwipe),
		unary("SwipeCurrent", NamePickerServer.SwipeCurrent),
		unary("SwipeDrag", NamePickerServer.SwipeDrag),
		unary("SwipeGesture", NamePickerServer.SwipeGesture),
		unary("SwipeDecide", NamePickerServer.SwipeDecide),
		unary("SwipeComplete", NamePickerServer.SwipeComplete),
		unary("SwipeUndo", NamePickerServer.SwipeUndo),
	},
	Streams: []grpc.StreamDesc{},
}

func unary[Req, Resp any](method string, call func(NamePickerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(NamePickerServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// GRPCServer adapts Service to NamePickerServer. The auth interceptor puts
// the caller's claims into the context of every non-public method.
type GRPCServer struct {
	svc  *Service
	auth *auth.Service
}

func caller(ctx context.Context) (auth.Claims, error) {
	c, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Claims{}, svcErr.Unauthenticated("missing bearer token")
	}
	return c, nil
}

func (g *GRPCServer) SignUp(ctx context.Context, req *SignUpRequest) (*SessionResponse, error) {
	sess, err := g.auth.SignUp(ctx, *req)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &sess, nil
}

func (g *GRPCServer) SignIn(ctx context.Context, req *SignInRequest) (*SessionResponse, error) {
	sess, err := g.auth.SignIn(ctx, *req)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &sess, nil
}

func (g *GRPCServer) AddName(ctx context.Context, req *AddNameRequest) (*db.Name, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	row, err := g.svc.AddName(ctx, c.UserID, req.Name, req.Gender)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &row, nil
}

func (g *GRPCServer) ListNames(ctx context.Context, req *ListNamesRequest) (*ListNamesResponse, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	resp, err := g.svc.ListNames(ctx, *req)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &resp, nil
}

func (g *GRPCServer) RecordDecision(ctx context.Context, req *RecordDecisionRequest) (*DecisionResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	row, err := g.svc.RecordDecision(ctx, c.UserID, req.NameID, req.Decision)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toDecisionResponse(row), nil
}

func (g *GRPCServer) ClearDecision(ctx context.Context, req *ClearDecisionRequest) (*Empty, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.svc.ClearDecision(ctx, c.UserID, req.NameID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &Empty{}, nil
}

func (g *GRPCServer) DeleteDecision(ctx context.Context, req *DeleteDecisionRequest) (*DecisionResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	row, err := g.svc.DeleteDecision(ctx, c.UserID, req.DecisionID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toDecisionResponse(row), nil
}

func (g *GRPCServer) ListMyDecisions(ctx context.Context, _ *Empty) (*MyDecisions, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	out, err := g.svc.ListMyDecisions(ctx, c.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &out, nil
}

func (g *GRPCServer) ListPartnerDecisions(ctx context.Context, _ *Empty) (*PartnerDecisions, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	out, err := g.svc.ListPartnerDecisions(ctx, c.Role)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &out, nil
}

func (g *GRPCServer) ListMatches(ctx context.Context, _ *Empty) (*Matches, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	out, err := g.svc.ListMatches(ctx, c.UserID, c.Role)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &out, nil
}

func (g *GRPCServer) Stats(ctx context.Context, _ *Empty) (*Stats, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	out, err := g.svc.Stats(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &out, nil
}

func (g *GRPCServer) GetPreferences(ctx context.Context, _ *Empty) (*PreferencesMessage, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	p, err := g.svc.GetPreferences(ctx, c.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &p, nil
}

func (g *GRPCServer) SavePreferences(ctx context.Context, req *PreferencesMessage) (*PreferencesMessage, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	p, err := g.svc.SavePreferences(ctx, c.UserID, *req)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &p, nil
}

func (g *GRPCServer) ConsumeReload(ctx context.Context, _ *Empty) (*ReloadResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	reload, err := g.svc.ConsumeReload(ctx, c.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &ReloadResponse{Reload: reload}, nil
}

func (g *GRPCServer) StartSwipe(ctx context.Context, _ *Empty) (*SwipeResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return swipeReply(g.svc.StartSwipe(ctx, c.UserID, c.Role))
}

func (g *GRPCServer) SwipeCurrent(ctx context.Context, _ *Empty) (*SwipeResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return swipeReply(g.svc.SwipeCurrent(c.UserID))
}

func (g *GRPCServer) SwipeDrag(ctx context.Context, req *SwipeDragRequest) (*SwipeResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return swipeReply(g.svc.SwipeDrag(c.UserID, *req))
}

func (g *GRPCServer) SwipeGesture(ctx context.Context, req *SwipeGestureRequest) (*SwipeResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return swipeReply(g.svc.SwipeGesture(ctx, c.UserID, *req))
}

func (g *GRPCServer) SwipeDecide(ctx context.Context, req *SwipeDecideRequest) (*SwipeResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return swipeReply(g.svc.SwipeDecide(ctx, c.UserID, req.Decision))
}

func (g *GRPCServer) SwipeComplete(ctx context.Context, _ *Empty) (*SwipeResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return swipeReply(g.svc.SwipeComplete(c.UserID))
}

func (g *GRPCServer) SwipeUndo(ctx context.Context, _ *Empty) (*SwipeResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return swipeReply(g.svc.SwipeUndo(ctx, c.UserID))
}

func swipeReply(resp SwipeResponse, err error) (*SwipeResponse, error) {
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &resp, nil
}
