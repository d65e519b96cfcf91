// Package provider sends requests to AI providers in their native wire formats.
package provider

import "github.com/ZaguanLabs/transroute"

// Candidate is an alias to the main package type.
type Candidate = transroute.Candidate

// Request is an alias to the main package type.
type Request = transroute.Request

// ProviderError is an alias to the main package error type.
type ProviderError = transroute.ProviderError
