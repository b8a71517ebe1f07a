// Package lsp exposes class listings to editors through
// workspace/executeCommand.
package lsp

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/jda/container"
	"github.com/dhamidi/jda/render"
	"github.com/dhamidi/jda/settings"
)

const lsName = "jda"

const (
	CommandRender   = "jda.render"
	CommandList     = "jda.list"
	CommandToggle   = "jda.toggle"
	CommandSettings = "jda.settings"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArguments      = errors.New("bad arguments")
)

var log = commonlog.GetLogger("jda.lsp")

type Server struct {
	table    *container.Table
	renderer *render.ClassRenderer
	handler  protocol.Handler
	server   *server.Server
	version  string

	mu     sync.Mutex
	loaded map[string]string
}

func NewServer(version string, table *container.Table, reg *settings.Registry) *Server {
	s := &Server{
		table:    table,
		renderer: render.NewClassRenderer(table, render.WithSettings(reg)),
		version:  version,
		loaded:   make(map[string]string),
	}

	s.handler = protocol.Handler{
		Initialize:              s.initialize,
		Initialized:             s.initialized,
		Shutdown:                s.shutdown,
		SetTrace:                s.setTrace,
		WorkspaceExecuteCommand: s.executeCommand,
	}

	s.server = server.NewServer(&s.handler, lsName, false)

	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{CommandRender, CommandList, CommandToggle, CommandSettings},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) executeCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	result, err := s.Execute(params.Command, params.Arguments)
	if err != nil {
		log.Errorf("%s: %s", params.Command, err.Error())
	}
	return result, err
}

// Execute runs one of the jda.* commands.
//
//	jda.render   [container path, class name] -> listing
//	jda.list     [container path]             -> class names
//	jda.toggle   [toggle id, on]              -> new state
//	jda.settings []                           -> toggles with their state
func (s *Server) Execute(command string, args []any) (any, error) {
	switch command {
	case CommandRender:
		path, name, err := twoStrings(args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", command, err)
		}
		id, err := s.open(path)
		if err != nil {
			return nil, err
		}
		cls, ok := s.table.Resolve(id, name)
		if !ok {
			return nil, fmt.Errorf("%s: class %s not found in %s", command, name, path)
		}
		return s.renderer.Render(id, cls), nil

	case CommandList:
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: %w: want 1 argument, got %d", command, ErrArguments, len(args))
		}
		path, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%s: %w: container path must be a string", command, ErrArguments)
		}
		id, err := s.open(path)
		if err != nil {
			return nil, err
		}
		return s.table.Names(id), nil

	case CommandToggle:
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: %w: want 2 arguments, got %d", command, ErrArguments, len(args))
		}
		id, ok1 := args[0].(string)
		on, ok2 := args[1].(bool)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%s: %w: want a toggle id and a boolean", command, ErrArguments)
		}
		reg := s.renderer.Settings()
		if err := reg.Set(id, on); err != nil {
			return nil, err
		}
		return reg.IsSelected(id), nil

	case CommandSettings:
		reg := s.renderer.Settings()
		var out []ToggleState
		for _, t := range reg.Toggles() {
			out = append(out, ToggleState{ID: t.ID, Label: t.Label, Default: t.Default, On: reg.IsSelected(t.ID)})
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
}

type ToggleState struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
	On      bool   `json:"on"`
}

// open loads path into the table the first time it is asked for.
func (s *Server) open(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.loaded[path]; ok {
		return id, nil
	}
	id, err := s.table.Load(path)
	if err != nil {
		return "", err
	}
	log.Infof("opened %s as %q", path, id)
	s.loaded[path] = id
	return id, nil
}

func twoStrings(args []any) (string, string, error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("%w: want 2 arguments, got %d", ErrArguments, len(args))
	}
	a, ok1 := args[0].(string)
	b, ok2 := args[1].(string)
	if !ok1 || !ok2 {
		return "", "", fmt.Errorf("%w: want two strings", ErrArguments)
	}
	return a, b, nil
}
