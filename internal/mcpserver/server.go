// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Lore notes, redaction and flashcards to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lore/internal/apperr"
	"github.com/starford/lore/internal/flashcard"
	"github.com/starford/lore/internal/noteservice"
)

const noteFormatURI = "lore://note-format"

// Server wraps the MCP server with Lore tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Lore tools registered. Every write
// goes through svc, so notes created here are redacted and versioned like
// notes created over HTTP.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lore",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through notes content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new Markdown note. Sensitive data (credentials, emails, card numbers, "+
			"national IDs, IP addresses, connection strings) is replaced by placeholders before the note is "+
			"stored, and flashcards are generated from the stored text. Read the contract first via "+
			"get_note_contract or the "+noteFormatURI+" resource."),
		mcp.WithString("path", mcp.Description("Relative path for the new note; derived from the title when empty")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the Lore note format contract")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the content of an existing note. The content is redacted and a new version is recorded."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New Markdown content")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("move_note",
		mcp.WithDescription("Rename a note. Its flashcards and version history move with it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Current relative path")),
		mcp.WithString("new_path", mcp.Required(), mcp.Description("New relative path")),
	), s.moveNote)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical Lore note format contract, including how to write "+
			"content that produces good flashcards. Call this before creating or updating notes."),
	), s.getNoteContract)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, optionally filtered by tag."),
		mcp.WithString("tag", mcp.Description("Optional tag filter")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all notes that link to the specified note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the note to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("redact_text",
		mcp.WithDescription("Replace sensitive data in text with [REDACTED_*] placeholders. Nothing is stored."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to redact")),
	), s.redactText)

	s.mcp.AddTool(mcp.NewTool("extract_flashcards",
		mcp.WithDescription("Redact text and extract question/answer flashcards from it. Nothing is stored."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Markdown or plain text")),
		mcp.WithNumber("max_cards", mcp.Description("Optional cap on the number of cards")),
	), s.extractFlashcards)

	s.mcp.AddTool(mcp.NewTool("list_flashcards",
		mcp.WithDescription("List the stored flashcards of a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path")),
	), s.listFlashcards)

	s.mcp.AddTool(mcp.NewTool("regenerate_flashcards",
		mcp.WithDescription("Rebuild a note's generated flashcards from its current content. Manual cards are kept."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path")),
	), s.regenerateFlashcards)

	s.mcp.AddTool(mcp.NewTool("add_flashcard",
		mcp.WithDescription("Attach a hand-written flashcard to a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path")),
		mcp.WithString("question", mcp.Required(), mcp.Description("Question")),
		mcp.WithString("answer", mcp.Required(), mcp.Description("Answer")),
		mcp.WithString("difficulty", mcp.Description("EASY, MEDIUM or HARD; classified from the answer when empty")),
	), s.addFlashcard)

	s.mcp.AddTool(mcp.NewTool("list_versions",
		mcp.WithDescription("List the stored versions of a note, newest first."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path")),
	), s.listVersions)

	s.mcp.AddResource(
		mcp.NewResource(noteFormatURI, "Note Format Contract",
			mcp.WithResourceDescription("Canonical Markdown note format that all notes must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error, path string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
	case errors.Is(err, apperr.ErrAlreadyExists):
		return mcp.NewToolResultError(fmt.Sprintf("note already exists: %s", path))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, path)
	if err != nil {
		return errorResult(err, path), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := req.GetString("path", "")

	note, err := s.svc.CreateNote(ctx, path, []byte(content))
	if err != nil {
		return errorResult(err, path), nil
	}
	msg := fmt.Sprintf("created: %s", note.Path)
	if n := len(note.Flashcards); n > 0 {
		msg += fmt.Sprintf(" (%d flashcards)", n)
	}
	if len(note.Redactions) > 0 {
		msg += " (sensitive data redacted)"
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.UpdateNote(ctx, path, []byte(content), ""); err != nil {
		return errorResult(err, path), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", path)), nil
}

func (s *Server) moveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newPath, err := req.RequireString("new_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.MoveNote(ctx, path, newPath)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return errorResult(err, newPath), nil
		}
		return errorResult(err, path), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("moved: %s -> %s", path, note.Path)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _, err := s.svc.ListNotes(ctx, 500, 0, req.GetString("tag", ""), "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.Path
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      noteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) redactText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.RedactText(ctx, text))
}

func (s *Server) extractFlashcards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var ov flashcard.Overrides
	if n := req.GetInt("max_cards", 0); n != 0 {
		ov.MaxCards = &n
	}
	_, cards, err := s.svc.ExtractPreview(ctx, text, ov)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cards)
}

func (s *Server) listFlashcards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cards, err := s.svc.ListFlashcards(ctx, path)
	if err != nil {
		return errorResult(err, path), nil
	}
	return jsonResult(cards)
}

func (s *Server) regenerateFlashcards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cards, err := s.svc.RegenerateFlashcards(ctx, path)
	if err != nil {
		return errorResult(err, path), nil
	}
	return jsonResult(cards)
}

func (s *Server) addFlashcard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	answer, err := req.RequireString("answer")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.svc.CreateFlashcard(ctx, noteservice.FlashcardInput{
		NotePath:   path,
		Question:   question,
		Answer:     answer,
		Difficulty: req.GetString("difficulty", ""),
	})
	if err != nil {
		return errorResult(err, path), nil
	}
	return jsonResult(card)
}

func (s *Server) listVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	versions, err := s.svc.ListVersions(ctx, path)
	if err != nil {
		return errorResult(err, path), nil
	}
	return jsonResult(versions)
}
