package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/muesli/termenv"
)

// ValidateArgs are the arguments of the validate_machine tool.
type ValidateArgs struct {
	Definition string `json:"definition"`
	Format     string `json:"format,omitempty"`
}

// ValidateResponse is the structured result of validate_machine.
type ValidateResponse struct {
	Valid       bool     `json:"valid" jsonschema_description:"Whether the definition is a valid machine"`
	Name        string   `json:"name,omitempty"`
	States      int      `json:"states,omitempty"`
	Transitions int      `json:"transitions,omitempty"`
	Errors      []string `json:"errors,omitempty" jsonschema_description:"Every violation found"`
}

// RunArgs are the arguments of the run_machine tool.
type RunArgs struct {
	Machine      string `json:"machine,omitempty"`
	Definition   string `json:"definition,omitempty"`
	Format       string `json:"format,omitempty"`
	Input        string `json:"input"`
	StepLimit    int    `json:"step_limit,omitempty"`
	IncludeTrace bool   `json:"include_trace,omitempty"`
}

// RunResponse is the structured result of run_machine.
type RunResponse struct {
	ID         string   `json:"id"`
	Outcome    string   `json:"outcome" jsonschema_description:"accepted, rejected or halted"`
	Reason     string   `json:"reason,omitempty"`
	FinalState string   `json:"final_state"`
	Steps      int      `json:"steps"`
	Tape       string   `json:"tape" jsonschema_description:"Final tape with the head cell in brackets"`
	Output     string   `json:"output"`
	Trace      []string `json:"trace,omitempty"`
}

// ListResponse is the structured result of list_machines.
type ListResponse struct {
	Machines []string `json:"machines"`
}

// GraphArgs are the arguments of the machine_graph tool.
type GraphArgs struct {
	Machine    string `json:"machine,omitempty"`
	Definition string `json:"definition,omitempty"`
	Format     string `json:"format,omitempty"`
}

// DefaultMaxStepLimit caps the steps of a single run_machine call.
const DefaultMaxStepLimit = 2000

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine       *turing.Engine
	catalog      ports.Catalog
	maxStepLimit int
	mcpServer    *server.MCPServer
}

// Option configures the MCP server.
type Option func(*Server)

// WithMaxStepLimit sets the largest step_limit a tool call may ask for.
// Calls without one run with the engine limit, capped at n.
func WithMaxStepLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxStepLimit = n
		}
	}
}

// NewServer creates a new MCP Server instance. The catalog may be nil, in
// which case tools only accept inline definitions.
func NewServer(engine *turing.Engine, catalog ports.Catalog, opts ...Option) *Server {
	s := &Server{
		engine:       engine,
		catalog:      catalog,
		maxStepLimit: DefaultMaxStepLimit,
		mcpServer:    server.NewMCPServer("turing-mcp", strings.TrimSpace(turing.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: validate_machine
	validateTool := mcp.NewTool("validate_machine",
		mcp.WithDescription("Validate a Turing machine definition (7-tuple) and report every violation."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("The definition document")),
		mcp.WithString("format", mcp.Description("json (default) or yaml")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: run_machine
	runTool := mcp.NewTool("run_machine",
		mcp.WithDescription("Run a machine over an input until it halts or reaches the step limit."),
		mcp.WithString("machine", mcp.Description("Name of a catalog machine")),
		mcp.WithString("definition", mcp.Description("Inline definition document; takes precedence over machine")),
		mcp.WithString("format", mcp.Description("Format of the inline definition: json (default) or yaml")),
		mcp.WithString("input", mcp.Required(), mcp.Description("Input string; every character is one symbol")),
		mcp.WithNumber("step_limit", mcp.Description("Maximum number of transitions; capped by the server")),
		mcp.WithBoolean("include_trace", mcp.Description("Return one line per configuration")),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRun))

	// TOOL: list_machines
	listTool := mcp.NewTool("list_machines",
		mcp.WithDescription("List the machines available in the catalog."),
		mcp.WithOutputSchema[ListResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleList))

	// TOOL: machine_graph
	s.mcpServer.AddTool(mcp.NewTool("machine_graph",
		mcp.WithDescription("Render the state diagram of a machine as a Mermaid flowchart."),
		mcp.WithString("machine", mcp.Description("Name of a catalog machine")),
		mcp.WithString("definition", mcp.Description("Inline definition document")),
		mcp.WithString("format", mcp.Description("json (default) or yaml")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GraphArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		m, err := s.compile(ctx, args.Machine, args.Definition, args.Format)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(graph.GenerateMermaid(m, nil)), nil
	})
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ValidateArgs) (ValidateResponse, error) {
	def, err := parse(args.Definition, args.Format)
	if err != nil {
		return ValidateResponse{}, err
	}

	m, err := machine.New(def)
	if err != nil {
		resp := ValidateResponse{Valid: false}
		for _, e := range domain.ValidationErrors(err) {
			resp.Errors = append(resp.Errors, e.Error())
		}
		return resp, nil
	}

	return ValidateResponse{
		Valid:       true,
		Name:        m.Name(),
		States:      len(m.States()),
		Transitions: m.Table().Len(),
	}, nil
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest, args RunArgs) (RunResponse, error) {
	limit, err := s.engine.RequestLimit(args.StepLimit, s.maxStepLimit)
	if err != nil {
		return RunResponse{}, err
	}

	m, err := s.compile(ctx, args.Machine, args.Definition, args.Format)
	if err != nil {
		return RunResponse{}, err
	}

	record, err := s.engine.Derive(turing.WithStepLimit(limit)).Run(ctx, m, args.Input)
	if err != nil {
		slog.Warn("MCP run_machine: run rejected", "error", err)
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}

	res := record.Result
	resp := RunResponse{
		ID:         record.ID,
		Outcome:    string(res.Outcome),
		Reason:     string(res.Reason),
		FinalState: string(res.FinalState),
		Steps:      res.Steps,
		Tape:       res.Tape.Window(),
		Output:     res.Output(),
	}
	if args.IncludeTrace {
		resp.Trace = tui.TraceLines(res.Trace, termenv.Ascii)
	}
	return resp, nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ListResponse, error) {
	names := []string{}
	if s.catalog != nil {
		listed, err := s.catalog.List(ctx)
		if err != nil {
			return ListResponse{}, fmt.Errorf("list failed: %w", err)
		}
		names = append(names, listed...)
	}
	return ListResponse{Machines: names}, nil
}

// compile resolves an inline definition or a catalog name into a machine.
func (s *Server) compile(ctx context.Context, name, document, format string) (*machine.Machine, error) {
	var (
		def domain.Definition
		err error
	)
	switch {
	case document != "":
		def, err = parse(document, format)
	case name != "" && s.catalog != nil:
		def, err = s.catalog.Get(ctx, name)
	case name != "":
		err = fmt.Errorf("%w: %q", domain.ErrMachineNotFound, name)
	default:
		err = errors.New("either machine or definition is required")
	}
	if err != nil {
		return nil, err
	}
	return machine.New(def)
}

func parse(document, format string) (domain.Definition, error) {
	f := file.FormatJSON
	if format != "" {
		f = file.Format(strings.ToLower(format))
	}
	return file.Parse([]byte(document), f)
}

func (s *Server) registerResources() {
	// EXPOSE: turing://machines
	s.mcpServer.AddResource(mcp.NewResource("turing://machines", "Catalog Machines",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.handleList(ctx, mcp.CallToolRequest{}, nil)
		if err != nil {
			return nil, err
		}
		jsonBytes, _ := json.Marshal(list)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "turing://machines",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
