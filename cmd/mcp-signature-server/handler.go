package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tmnn7/endsig/internal/github"
	"github.com/tmnn7/endsig/internal/signature"
)

// Tools implements the MCP tool handlers.
type Tools struct {
	store    github.CommentStore
	repo     string
	appender *signature.Appender
}

// DetectCharacterParams is the input of detect_character.
type DetectCharacterParams struct {
	Body string `json:"body" jsonschema:"The comment body to classify"`
}

// DetectCharacterResult is the output of detect_character.
type DetectCharacterResult struct {
	Character string `json:"character" jsonschema:"Detected character name, empty when none"`
	Signed    bool   `json:"signed" jsonschema:"Whether the body already ends in a signature block"`
}

// SignCommentParams is the input of sign_comment.
type SignCommentParams struct {
	CommentID int64 `json:"comment_id" jsonschema:"ID of the issue comment to sign"`
}

// SignCommentResult is the output of sign_comment.
type SignCommentResult struct {
	CommentID int64  `json:"comment_id"`
	Character string `json:"character"`
	Outcome   string `json:"outcome"`
}

// HandleDetectCharacter classifies a body without touching GitHub.
func (t *Tools) HandleDetectCharacter(
	ctx context.Context,
	req *mcp.CallToolRequest,
	params DetectCharacterParams,
) (*mcp.CallToolResult, DetectCharacterResult, error) {
	return nil, DetectCharacterResult{
		Character: t.appender.Registry().Detect(params.Body),
		Signed:    signature.HasEndSignature(params.Body),
	}, nil
}

// HandleSignComment loads a comment and signs it when it belongs to a
// character and is not yet signed.
func (t *Tools) HandleSignComment(
	ctx context.Context,
	req *mcp.CallToolRequest,
	params SignCommentParams,
) (*mcp.CallToolResult, SignCommentResult, error) {
	if params.CommentID <= 0 {
		return nil, SignCommentResult{}, fmt.Errorf("comment_id must be positive")
	}

	comment, err := t.store.GetComment(ctx, t.repo, params.CommentID)
	if err != nil {
		return nil, SignCommentResult{}, fmt.Errorf("failed to load comment %d: %w", params.CommentID, err)
	}

	outcome, character, err := t.appender.Process(ctx, comment)
	result := SignCommentResult{
		CommentID: comment.ID,
		Character: character,
		Outcome:   outcome.String(),
	}
	if err != nil {
		slog.Error("failed to sign comment", "comment", comment.ID, "err", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Error: %v", err)},
			},
			IsError: true,
		}, result, nil
	}

	slog.Info("sign_comment", "comment", comment.ID, "character", character, "outcome", outcome)
	return nil, result, nil
}
