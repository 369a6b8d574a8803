// Package runner implements the interactive conversation loop connecting
// user input, the model provider, and the MCP tool session.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"wisp/internal/mcp/protocol"
	"wisp/internal/provider"
	"wisp/pkg/logger"
)

// ToolCaller executes tools on the remote MCP server.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (*protocol.CallToolResult, error)
}

// emptyResultText is recorded when a tool returns no text content.
const emptyResultText = "No result returned"

// Runner drives the interactive loop: read a line, generate, execute the
// requested tool if any, generate the final reply, repeat.
type Runner struct {
	invoker *Invoker
	tools   ToolCaller
	decls   []provider.ToolDeclaration
	history *History

	in  io.Reader
	out io.Writer
}

// New creates a runner over the given provider invoker and tool session.
func New(invoker *Invoker, tools ToolCaller, decls []provider.ToolDeclaration, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		invoker: invoker,
		tools:   tools,
		decls:   decls,
		history: NewHistory(),
		in:      in,
		out:     out,
	}
}

// History exposes the conversation log, mainly for tests.
func (r *Runner) History() *History {
	return r.history
}

// Run reads user input until EOF or an exit keyword. A failed turn is
// reported and the loop continues; only input exhaustion and context
// cancellation end the session.
func (r *Runner) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(r.out, "You: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(r.out)
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}

		if err := r.runTurn(ctx, input); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error().Err(err).Msg("turn failed")
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
	}
}

// runTurn handles one user message end to end. New turns are collected on a
// working copy of the transcript and committed only when the whole turn
// succeeds, so a failed turn leaves no partial state behind.
func (r *Runner) runTurn(ctx context.Context, input string) error {
	userTurn := provider.NewTextTurn(provider.RoleUser, input)
	working := append(r.history.Turns(), userTurn)

	resp, err := r.invoker.Invoke(ctx, working, r.decls)
	if err != nil {
		return err
	}

	call := firstFunctionCall(resp.Turn)
	if call == nil {
		r.history.Append(userTurn, resp.Turn)
		r.printTurn(resp.Turn)
		return nil
	}

	logger.Info().Str("tool", call.Name).Interface("args", call.Args).Msg("model requested tool")

	response, ok := r.executeTool(ctx, *call)
	if !ok {
		// Already reported; the turn is abandoned without committing.
		return nil
	}

	working = append(working,
		provider.NewFunctionCallTurn(call.Name, call.Args),
		provider.NewFunctionResponseTurn(call.Name, response),
	)

	final, err := r.invoker.Invoke(ctx, working, r.decls)
	if err != nil {
		return err
	}

	r.history.Append(userTurn)
	r.history.AppendToolRoundTrip(*call, response)
	r.history.Append(final.Turn)
	r.printTurn(final.Turn)
	return nil
}

// executeTool runs the requested tool and shapes its output as the function
// response payload. A failure is reported to the user and never escalated.
func (r *Runner) executeTool(ctx context.Context, call provider.FunctionCall) (map[string]any, bool) {
	result, err := r.tools.CallTool(ctx, call.Name, call.Args)
	if err != nil {
		logger.Error().Err(err).Str("tool", call.Name).Msg("tool call failed")
		fmt.Fprintf(r.out, "Failed to execute tool: %s\n", call.Name)
		return nil, false
	}
	if result.IsError {
		logger.Error().Str("tool", call.Name).Str("output", result.JoinedText()).Msg("tool reported error")
		fmt.Fprintf(r.out, "Failed to execute tool: %s\n", call.Name)
		return nil, false
	}

	text := result.JoinedText()
	if text == "" {
		text = emptyResultText
	}
	return map[string]any{"result": text}, true
}

// firstFunctionCall returns the function call when the model's reply leads
// with one. Calls in later parts are not executed, only displayed.
func firstFunctionCall(turn provider.Turn) *provider.FunctionCall {
	if len(turn.Parts) == 0 {
		return nil
	}
	return turn.Parts[0].FunctionCall
}

// printTurn renders a model turn. Function calls that were not executed are
// shown rather than silently dropped.
func (r *Runner) printTurn(turn provider.Turn) {
	for _, part := range turn.Parts {
		switch {
		case part.FunctionCall != nil:
			fmt.Fprintf(r.out, "[tool call] %s(%v)\n", part.FunctionCall.Name, part.FunctionCall.Args)
		case part.Text != "":
			fmt.Fprintf(r.out, "Gemini: %s\n", part.Text)
		}
	}
}
