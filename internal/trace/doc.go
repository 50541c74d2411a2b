// Package trace records what the formula checker did and how long it took.
//
// Tracing is off by default. The command line turns it on with
//
//	formula check --trace=- --trace-level=detail 'ifs(boolean, number, string)'
//
// Implementations:
//
//   - Nop: tracing disabled
//   - StreamTracer: writes each event as it happens (text or NDJSON)
//   - RingTracer: keeps the last N events in memory for dumps after a failure
//   - MultiTracer: fans out to several tracers
//
// Levels select scopes: LevelPhase emits driver and pass events, LevelDetail
// adds per-call events, LevelDebug emits everything. LevelError keeps the
// tracer alive for ring dumps without emitting.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "sema", parentID)
//	defer span.End("")
package trace
