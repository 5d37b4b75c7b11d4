// Package trace records spans for sierradec runs.
//
// A run is traced at three granularities:
//
//   - ScopeDriver: one span per CLI command
//   - ScopeStage: pipeline stages (load, catalog, decompile, write)
//   - ScopeFunction: one span per decompiled function
//   - ScopeStatement: individual statements (debug level only)
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeStage, "load")
//	defer span.End("")
//
// StreamTracer writes events as they happen, RingTracer keeps the most
// recent ones in memory so they can be dumped after a failure, and
// MultiTracer fans out to both. A Heartbeat emits periodic events so a
// stuck run can be told apart from a slow one.
package trace
