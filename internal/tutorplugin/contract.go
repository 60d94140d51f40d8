// Package tutorplugin defines the go-plugin contract between the tutor and
// its collaborator binaries (content generation and grading). The wire
// format is JSON over grpc so guests need no generated protobuf code.
package tutorplugin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey = "robotutor"
	serviceName  = "robotutor.plugin.v1.Collaborator"

	jsonCodecName = "json"

	methodDescribe     = "/" + serviceName + "/Describe"
	methodPlanLesson   = "/" + serviceName + "/PlanLesson"
	methodGenerateQuiz = "/" + serviceName + "/GenerateQuiz"
	methodGradeQuiz    = "/" + serviceName + "/GradeQuiz"
	methodSummarize    = "/" + serviceName + "/Summarize"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "ROBOTUTOR_PLUGIN",
	MagicCookieValue: "robotutor",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Info struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Roles   []string `json:"roles"`
}

type Segment struct {
	Title         string   `json:"title"`
	Minutes       int      `json:"minutes"`
	Script        string   `json:"script"`
	CheckQuestion string   `json:"check_question"`
	Emotion       string   `json:"emotion"`
	Motion        string   `json:"motion"`
	Sources       []string `json:"sources,omitempty"`
}

type PlanLessonRequest struct {
	Title      string `json:"title"`
	SourceName string `json:"source_name"`
	SourceText string `json:"source_text"`
}

type PlanLessonResponse struct {
	Title          string    `json:"title"`
	Segments       []Segment `json:"segments"`
	Objectives     []string  `json:"objectives,omitempty"`
	NextLessonHint string    `json:"next_lesson_hint,omitempty"`
}

type TranscriptLine struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type QuizQuestion struct {
	Question     string   `json:"question"`
	IdealAnswer  string   `json:"ideal_answer"`
	RubricPoints []string `json:"rubric_points,omitempty"`
}

type GenerateQuizRequest struct {
	LessonTitle string           `json:"lesson_title"`
	Scripts     []string         `json:"scripts"`
	Transcript  []TranscriptLine `json:"transcript"`
	Count       int              `json:"count"`
}

type GenerateQuizResponse struct {
	Questions []QuizQuestion `json:"questions"`
}

type QuestionScore struct {
	Question string `json:"question"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Feedback string `json:"feedback"`
}

type GradeQuizRequest struct {
	Questions []QuizQuestion `json:"questions"`
	Answers   []string       `json:"answers"`
}

type GradeQuizResponse struct {
	TotalScore      int             `json:"total_score"`
	MaxScore        int             `json:"max_score"`
	PerQuestion     []QuestionScore `json:"per_question"`
	OverallFeedback string          `json:"overall_feedback"`
}

type SummarizeRequest struct {
	LessonTitle string           `json:"lesson_title"`
	StudentID   string           `json:"student_id"`
	Transcript  []TranscriptLine `json:"transcript"`
	Score       *int             `json:"score,omitempty"`
	ScoreMax    *int             `json:"score_max,omitempty"`
}

type SummarizeResponse struct {
	KeyTakeaways []string `json:"key_takeaways"`
	Vocabulary   []string `json:"vocabulary,omitempty"`
	Strengths    []string `json:"strengths,omitempty"`
	Improvements []string `json:"improvements,omitempty"`
	NextStep     string   `json:"next_step"`
}

type CollaboratorServer interface {
	Describe(ctx context.Context, in *Empty) (*Info, error)
	PlanLesson(ctx context.Context, in *PlanLessonRequest) (*PlanLessonResponse, error)
	GenerateQuiz(ctx context.Context, in *GenerateQuizRequest) (*GenerateQuizResponse, error)
	GradeQuiz(ctx context.Context, in *GradeQuizRequest) (*GradeQuizResponse, error)
	Summarize(ctx context.Context, in *SummarizeRequest) (*SummarizeResponse, error)
}

type CollaboratorClient interface {
	Describe(ctx context.Context) (*Info, error)
	PlanLesson(ctx context.Context, in *PlanLessonRequest) (*PlanLessonResponse, error)
	GenerateQuiz(ctx context.Context, in *GenerateQuizRequest) (*GenerateQuizResponse, error)
	GradeQuiz(ctx context.Context, in *GradeQuizRequest) (*GradeQuizResponse, error)
	Summarize(ctx context.Context, in *SummarizeRequest) (*SummarizeResponse, error)
}

type collaboratorClient struct {
	conn *grpc.ClientConn
}

func NewCollaboratorClient(conn *grpc.ClientConn) CollaboratorClient {
	return &collaboratorClient{conn: conn}
}

func (c *collaboratorClient) Describe(ctx context.Context) (*Info, error) {
	out := &Info{}
	if err := c.conn.Invoke(ctx, methodDescribe, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *collaboratorClient) PlanLesson(ctx context.Context, in *PlanLessonRequest) (*PlanLessonResponse, error) {
	out := &PlanLessonResponse{}
	if err := c.conn.Invoke(ctx, methodPlanLesson, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *collaboratorClient) GenerateQuiz(ctx context.Context, in *GenerateQuizRequest) (*GenerateQuizResponse, error) {
	out := &GenerateQuizResponse{}
	if err := c.conn.Invoke(ctx, methodGenerateQuiz, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *collaboratorClient) GradeQuiz(ctx context.Context, in *GradeQuizRequest) (*GradeQuizResponse, error) {
	out := &GradeQuizResponse{}
	if err := c.conn.Invoke(ctx, methodGradeQuiz, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *collaboratorClient) Summarize(ctx context.Context, in *SummarizeRequest) (*SummarizeResponse, error) {
	out := &SummarizeResponse{}
	if err := c.conn.Invoke(ctx, methodSummarize, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func unary[Req any, Resp any](method string, call func(context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	name := method[len("/"+serviceName+"/"):]
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
			handler := func(ctx context.Context, req any) (any, error) {
				typed, ok := req.(*Req)
				if !ok {
					return nil, fmt.Errorf("invalid request type for %s", method)
				}
				return call(ctx, typed)
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func RegisterCollaboratorServer(server grpc.ServiceRegistrar, impl CollaboratorServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*CollaboratorServer)(nil),
		Methods: []grpc.MethodDesc{
			unary(methodDescribe, impl.Describe),
			unary(methodPlanLesson, impl.PlanLesson),
			unary(methodGenerateQuiz, impl.GenerateQuiz),
			unary(methodGradeQuiz, impl.GradeQuiz),
			unary(methodSummarize, impl.Summarize),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/collaborator-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl CollaboratorServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterCollaboratorServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewCollaboratorClient(conn), nil
}

func PluginMap(impl CollaboratorServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}

// Serve runs a collaborator guest. Guest binaries call this from main.
func Serve(impl CollaboratorServer) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap(impl),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
