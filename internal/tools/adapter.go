// Package tools bridges MCP tool descriptors to provider tool declarations.
package tools

import (
	"wisp/internal/mcp/protocol"
	"wisp/internal/provider"
)

// BuildDeclarations converts the tool list published by an MCP server into
// the declarations a provider advertises to the model. The input is not
// modified and the schema bytes are carried through untouched; interpreting
// them is the provider's job.
func BuildDeclarations(mcpTools []protocol.Tool) []provider.ToolDeclaration {
	decls := make([]provider.ToolDeclaration, 0, len(mcpTools))
	for _, t := range mcpTools {
		decls = append(decls, provider.ToolDeclaration{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return decls
}
