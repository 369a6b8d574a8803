// Package provider defines the model backend interface and conversation types.
package provider

import "context"

// Provider defines the interface for model backends.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Generate sends the full conversation and returns the model's reply.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}
