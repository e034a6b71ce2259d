// Package mcp exposes deck reconstruction as MCP tools.
package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/spiredeck/internal/archive"
	"github.com/peterkuimelis/spiredeck/internal/report"
)

// RegisterTools adds all reconstruction tools to the MCP server.
func RegisterTools(s *server.MCPServer, sess *Session) {
	s.AddTool(reconstructRunTool(), sess.handleReconstructRun)
	s.AddTool(listTurnDiffsTool(), sess.handleListTurnDiffs)
	s.AddTool(deckAtFloorTool(), sess.handleDeckAtFloor)
	s.AddTool(listCharactersTool(), sess.handleListCharacters)
	s.AddTool(getArchivedRunTool(), sess.handleGetArchivedRun)
}

// --- Tool definitions ---

func reconstructRunTool() mcp.Tool {
	return mcp.NewTool("reconstruct_run",
		mcp.WithDescription("Reconstruct the deck history of a run file. Returns the final deck, the cards the log "+
			"never explained (unknown_obtained / unknown_removed) and every floor's deck changes. "+
			"The report is archived when an archive is configured."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the .run JSON file")),
	)
}

func listTurnDiffsTool() mcp.Tool {
	return mcp.NewTool("list_turn_diffs",
		mcp.WithDescription("List the deck changes of every floor that had any, in floor order. Read-only."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the .run JSON file")),
	)
}

func deckAtFloorTool() mcp.Tool {
	return mcp.NewTool("deck_at_floor",
		mcp.WithDescription("Replay a run from the starting deck and return the deck after every change on or "+
			"before the given floor. Floor -1 returns the starting deck."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the .run JSON file")),
		mcp.WithNumber("floor", mcp.Required(), mcp.Description("Floor to stop at")),
	)
}

func listCharactersTool() mcp.Tool {
	return mcp.NewTool("list_characters",
		mcp.WithDescription("List the known characters and their starting decks. Read-only."),
	)
}

func getArchivedRunTool() mcp.Tool {
	return mcp.NewTool("get_archived_run",
		mcp.WithDescription("Fetch a previously archived reconstruction report by ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Report ID (the run's play_id or a generated UUID)")),
	)
}

// --- Tool handlers ---

func (s *Session) handleReconstructRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	loaded, err := s.load(path)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to load run: %v", err), nil
	}

	r := loaded.buildReport()
	if s.archive != nil {
		if err := s.archive.SaveReport(ctx, r); err != nil {
			s.logger.Warn("archive report", zap.String("id", r.ID), zap.Error(err))
			return mcp.NewToolResultErrorf("Failed to archive report: %v", err), nil
		}
	}

	return mcp.NewToolResultText(respondJSON(r)), nil
}

func (s *Session) handleListTurnDiffs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	loaded, err := s.load(path)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to load run: %v", err), nil
	}

	return mcp.NewToolResultText(respondJSON(report.NewTurnViews(loaded.result.Diffs))), nil
}

func (s *Session) handleDeckAtFloor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	if _, ok := request.GetArguments()["floor"]; !ok {
		return mcp.NewToolResultError("floor is required"), nil
	}
	floor := request.GetInt("floor", -1)
	if floor < -1 {
		return mcp.NewToolResultErrorf("Invalid floor %d. Must be -1 or greater.", floor), nil
	}

	loaded, err := s.load(path)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to load run: %v", err), nil
	}

	tl := loaded.result.Timeline(s.eventLogger())
	tl.Seek(floor)
	view := report.NewDeckView(tl.Floor(), tl.Position(), tl.Deck())

	return mcp.NewToolResultText(respondJSON(view)), nil
}

func (s *Session) handleListCharacters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(respondJSON(report.NewCharacterViews(s.registry))), nil
}

func (s *Session) handleGetArchivedRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.archive == nil {
		return mcp.NewToolResultError("No archive is configured."), nil
	}
	id := request.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	r, err := s.archive.GetReport(ctx, id)
	if errors.Is(err, archive.ErrNotFound) {
		return mcp.NewToolResultErrorf("No archived run with id %q.", id), nil
	}
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to read archive: %v", err), nil
	}

	return mcp.NewToolResultText(respondJSON(r)), nil
}
