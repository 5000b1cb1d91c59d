// Package model defines the provider-agnostic model gateway contract of
// goswarm.
//
// Core goals:
//   - One synchronous operation: send instructions, history snapshot and tool
//     schemas, receive either final text or structured tool-call requests
//   - Normalize tool definitions across vendors (ToolDefinition)
//   - Surface transport/auth/rate-limit failures as *GatewayError, never
//     silently retried; retry policy belongs to the caller or adapter
//   - Facilitate deterministic loop tests via the scripted MockModel
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so the orchestration loop remains decoupled from vendor SDKs.
package model
