package gemini

import (
	"wisp/internal/provider"

	"google.golang.org/genai"
)

// toContents converts the conversation log into genai wire contents.
func toContents(turns []provider.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		contents = append(contents, toContent(turn))
	}
	return contents
}

func toContent(turn provider.Turn) *genai.Content {
	parts := make([]*genai.Part, 0, len(turn.Parts))
	for _, part := range turn.Parts {
		switch {
		case part.FunctionCall != nil:
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				},
			})
		case part.FunctionResponse != nil:
			parts = append(parts, genai.NewPartFromFunctionResponse(
				part.FunctionResponse.Name,
				part.FunctionResponse.Response,
			))
		default:
			parts = append(parts, genai.NewPartFromText(part.Text))
		}
	}
	return &genai.Content{Role: string(turn.Role), Parts: parts}
}

// fromContent converts a model candidate back into a Turn. Parts the
// conversation log has no representation for are dropped.
func fromContent(content *genai.Content) provider.Turn {
	role := provider.RoleModel
	if content.Role == string(provider.RoleUser) {
		role = provider.RoleUser
	}

	turn := provider.Turn{Role: role}
	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		switch {
		case part.FunctionCall != nil:
			turn.Parts = append(turn.Parts, provider.Part{
				FunctionCall: &provider.FunctionCall{
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				},
			})
		case part.FunctionResponse != nil:
			turn.Parts = append(turn.Parts, provider.Part{
				FunctionResponse: &provider.FunctionResponse{
					Name:     part.FunctionResponse.Name,
					Response: part.FunctionResponse.Response,
				},
			})
		case part.Text != "":
			turn.Parts = append(turn.Parts, provider.Part{Text: part.Text})
		}
	}
	return turn
}

// toGenaiTools converts tool declarations into a single genai tool carrying
// all function declarations, which is how the API expects them grouped.
func toGenaiTools(decls []provider.ToolDeclaration) ([]*genai.Tool, error) {
	fns := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, decl := range decls {
		schema, err := toGenaiSchema(decl.InputSchema)
		if err != nil {
			return nil, err
		}
		fns = append(fns, &genai.FunctionDeclaration{
			Name:        decl.Name,
			Description: decl.Description,
			Parameters:  schema,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: fns}}, nil
}
