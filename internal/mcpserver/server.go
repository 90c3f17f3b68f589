// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes workspace folders and notes for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/foldernotes/internal/apperr"
	"github.com/starford/foldernotes/internal/noteservice"
)

// NoteFormatURI is the resource URI of NoteFormatContract.
const NoteFormatURI = "foldernotes://note-format"

// Server wraps the MCP server with workspace tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *noteservice.Service
	logger   *slog.Logger
	handlers map[string]server.ToolHandlerFunc
}

// New creates a new MCP server with all tools registered.
func New(svc *noteservice.Service, version string, logger *slog.Logger) *Server {
	s := &Server{svc: svc, logger: logger, handlers: make(map[string]server.ToolHandlerFunc)}

	s.mcp = server.NewMCPServer(
		"foldernotes",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	folderArg := mcp.WithString("folder", mcp.Required(), mcp.Description("Folder name"))
	noteArg := mcp.WithString("note", mcp.Required(), mcp.Description("Note name without the .md extension"))

	s.addTool(mcp.NewTool("get_workspace",
		mcp.WithDescription("Return the active workspace directory."),
	), s.getWorkspace)

	s.addTool(mcp.NewTool("list_folders",
		mcp.WithDescription("List the folders of the workspace."),
	), s.listFolders)

	s.addTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the notes of a folder."),
		folderArg,
	), s.listNotes)

	s.addTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a note together with its title and checksum."),
		folderArg, noteArg,
	), s.readNote)

	s.addTool(mcp.NewTool("save_note",
		mcp.WithDescription("Replace the content of a note, creating the file if needed. "+
			"The folder must exist. Read the "+NoteFormatURI+" resource for the layout rules."),
		folderArg, noteArg,
		mcp.WithString("content", mcp.Required(), mcp.Description("Full Markdown content")),
		mcp.WithString("if_match", mcp.Description("Optional checksum from read_note; the save fails if the note changed")),
	), s.saveNote)

	s.addTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note seeded with a level-1 heading of its name. "+
			"Fails if a note with the same name (ignoring case) exists."),
		folderArg, noteArg,
	), s.createNote)

	s.addTool(mcp.NewTool("rename_note",
		mcp.WithDescription("Rename a note within its folder."),
		folderArg, noteArg,
		mcp.WithString("new_name", mcp.Required(), mcp.Description("New note name")),
	), s.renameNote)

	s.addTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note."),
		folderArg, noteArg,
	), s.deleteNote)

	s.addTool(mcp.NewTool("create_folder",
		mcp.WithDescription("Create an empty folder."),
		folderArg,
	), s.createFolder)

	s.addTool(mcp.NewTool("rename_folder",
		mcp.WithDescription("Rename a folder together with all of its notes."),
		folderArg,
		mcp.WithString("new_name", mcp.Required(), mcp.Description("New folder name")),
	), s.renameFolder)

	s.addTool(mcp.NewTool("delete_folder",
		mcp.WithDescription("Delete a folder and every note in it."),
		folderArg,
	), s.deleteFolder)

	s.addTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchNotes)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource(NoteFormatURI, "Note Format",
			mcp.WithResourceDescription("How folders and notes are laid out on disk and named."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

func (s *Server) addTool(tool mcp.Tool, h server.ToolHandlerFunc) {
	s.handlers[tool.Name] = h
	s.mcp.AddTool(tool, h)
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// arg returns a required, trimmed string argument.
func arg(req mcp.CallToolRequest, key string) (string, error) {
	v, err := req.RequireString(key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// args returns several required, trimmed string arguments.
func args(req mcp.CallToolRequest, keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	for i, k := range keys {
		v, err := arg(req, k)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// failure turns an operation error into a tool error result. Unexpected
// errors are logged as well.
func (s *Server) failure(tool string, err error) *mcp.CallToolResult {
	if apperr.KindOf(err) == apperr.KindUnknown && !errors.Is(err, apperr.ErrConflict) {
		s.logger.Error("mcp tool failed", slog.String("tool", tool), slog.String("error", err.Error()))
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getWorkspace(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.svc.Workspace(ctx)), nil
}

func (s *Server) listFolders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folders, err := s.svc.ListFolders(ctx)
	if err != nil {
		return s.failure("list_folders", err), nil
	}
	return jsonResult(folders)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := arg(req, "folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.ListNotes(ctx, folder)
	if err != nil {
		return s.failure("list_notes", err), nil
	}
	return jsonResult(notes)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := args(req, "folder", "note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.FetchNote(ctx, a[0], a[1])
	if err != nil {
		return s.failure("read_note", err), nil
	}
	return jsonResult(note)
}

func (s *Server) saveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := args(req, "folder", "note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Content is stored verbatim.
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ifMatch := strings.TrimSpace(req.GetString("if_match", ""))

	note, err := s.svc.SaveNote(ctx, a[0], a[1], content, ifMatch)
	if err != nil {
		return s.failure("save_note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s/%s (checksum %s)", note.Folder, note.Name, note.Checksum)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := args(req, "folder", "note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.CreateNote(ctx, a[0], a[1]); err != nil {
		return s.failure("create_note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s/%s", a[0], a[1])), nil
}

func (s *Server) renameNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := args(req, "folder", "note", "new_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.RenameNote(ctx, a[0], a[1], a[2]); err != nil {
		return s.failure("rename_note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("renamed: %s/%s -> %s/%s", a[0], a[1], a[0], a[2])), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := args(req, "folder", "note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteNote(ctx, a[0], a[1]); err != nil {
		return s.failure("delete_note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s/%s", a[0], a[1])), nil
}

func (s *Server) createFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := arg(req, "folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.CreateFolder(ctx, folder); err != nil {
		return s.failure("create_folder", err), nil
	}
	return mcp.NewToolResultText("created: " + folder), nil
}

func (s *Server) renameFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := args(req, "folder", "new_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.RenameFolder(ctx, a[0], a[1]); err != nil {
		return s.failure("rename_folder", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("renamed: %s -> %s", a[0], a[1])), nil
}

func (s *Server) deleteFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := arg(req, "folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteFolder(ctx, folder); err != nil {
		return s.failure("delete_folder", err), nil
	}
	return mcp.NewToolResultText("deleted: " + folder), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := arg(req, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return s.failure("search_notes", err), nil
	}
	return jsonResult(results)
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
