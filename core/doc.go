// Package core provides the foundational domain types shared by every layer
// of goswarm:
//
//   - Agents (immutable per-turn descriptors of identity, instructions, model
//     selection and declared tools)
//   - Messages (the append-only conversation history, including tool-call
//     requests, tool results and handoff audit records)
//   - ToolChoice (the closed set of tool-selection policies)
//   - StopReason (why an orchestration run terminated)
//
// The package intentionally keeps implementation concerns (gateway adapters,
// tool execution, the run loop) out of scope so that higher layers depend on
// small value types only.
package core
