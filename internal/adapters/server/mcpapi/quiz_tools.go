package mcpapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
)

// registerQuizTools registers quiz list/export/import/shuffle/grade tools.
func registerQuizTools(srv *mcpserver.MCPServer, svc *app.Service) {
	srv.AddTool(
		mcp.NewTool(
			"backlog.list_quizzes",
			mcp.WithDescription("List stored quizzes."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			quizzes, err := svc.ListQuizzes(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"quizzes": quizzes})
			if err != nil {
				return nil, fmt.Errorf("encode list_quizzes result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"backlog.export_quiz",
			mcp.WithDescription("Export one quiz as a portable document."),
			mcp.WithString("quiz_id", mcp.Required(), mcp.Description("Quiz identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			quizID, err := req.RequireString("quiz_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			doc, err := svc.ExportQuiz(ctx, quizID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(doc)
			if err != nil {
				return nil, fmt.Errorf("encode export_quiz result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"backlog.import_quiz",
			mcp.WithDescription("Import a quiz document; it is schema-validated before anything is stored."),
			mcp.WithObject("document", mcp.Required(), mcp.Description("Quiz document object")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args struct {
				Document json.RawMessage `json:"document"`
			}
			if err := req.BindArguments(&args); err != nil {
				return mcp.NewToolResultError("invalid_request: " + err.Error()), nil
			}
			quiz, err := svc.ImportQuiz(ctx, args.Document)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(quiz)
			if err != nil {
				return nil, fmt.Errorf("encode import_quiz result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"backlog.shuffle_quiz",
			mcp.WithDescription("Return a deterministically shuffled view of one quiz's multiple-choice questions."),
			mcp.WithString("quiz_id", mcp.Required(), mcp.Description("Quiz identifier")),
			mcp.WithNumber("seed", mcp.Description("Shuffle seed, defaults to 0")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			quizID, err := req.RequireString("quiz_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			quiz, err := svc.ShuffleQuiz(ctx, quizID, int64(req.GetInt("seed", 0)))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(quiz)
			if err != nil {
				return nil, fmt.Errorf("encode shuffle_quiz result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"backlog.grade_quiz",
			mcp.WithDescription("Grade an attempt. Multiple choice by answer index, short answers by case-insensitive match; long answers stay ungraded."),
			mcp.WithString("quiz_id", mcp.Required(), mcp.Description("Quiz identifier")),
			mcp.WithObject("multiple_choice", mcp.Description("Question id to chosen answer index")),
			mcp.WithObject("short_answer", mcp.Description("Question id to answer text")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args struct {
				QuizID         string            `json:"quiz_id"`
				MultipleChoice map[string]int    `json:"multiple_choice"`
				ShortAnswer    map[string]string `json:"short_answer"`
			}
			if err := req.BindArguments(&args); err != nil {
				return mcp.NewToolResultError("invalid_request: " + err.Error()), nil
			}
			if args.QuizID == "" {
				return mcp.NewToolResultError(`invalid_request: required argument "quiz_id" not found`), nil
			}
			score, err := svc.GradeQuiz(ctx, args.QuizID, app.QuizAnswers{
				MultipleChoice: args.MultipleChoice,
				ShortAnswer:    args.ShortAnswer,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"correct":  score.Correct,
				"graded":   score.Graded,
				"ungraded": score.Ungraded,
			})
			if err != nil {
				return nil, fmt.Errorf("encode grade_quiz result: %w", err)
			}
			return result, nil
		},
	)
}
