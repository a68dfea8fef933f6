// Package pipeline runs seq iterators under a context.
//
// A Pipeline is a lazy, reusable description of a sequence: its stages are
// built from scratch every time a terminal (Collect, Count, First, Drain,
// ForEach) runs it. Each execution gets a Run scope carrying the context, a
// run id and the cleanups registered by its sources. Terminals check the
// context between pulls and always release the scope before returning, so
// resources opened with Using are closed exactly once whether the sequence
// is exhausted or abandoned.
//
// # Operators
//
// Element-wise stages delegate to seq:
//
//   - Map, FlatMap, Filter, Tap, Limit, Sample, Batch, Concat, Reduce
//
// Ordered stages require inputs sorted by the supplied comparator:
//
//   - MergeSorted, ReduceSorted, ReduceHashSorted, MergeJoin, MapGroupSorted
//
// Decorators observe a stage without changing it:
//
//   - WithLogging, WithMetrics, WithTracing
//
// # Usage
//
//	src := pipeline.Using(pipeline.From(openFile(path)), closeFile)
//	evens := pipeline.Filter(src, func(n int) bool { return n%2 == 0 })
//	results, err := pipeline.Collect(ctx, pipeline.WithLogging(evens, "evens"))
package pipeline
