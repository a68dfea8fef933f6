// Package blockstore keeps byte blocks by key and exposes them as seq
// sources.
//
// Two backends implement Store:
//
//   - Memory scans entries in ascending key order, so a scan can feed
//     seq.MergeSorted, seq.MergeJoin or seq.ReduceSorted directly.
//   - Redis keeps entries in one hash and scans it with HSCAN, one page
//     at a time. Its order is defined by Redis.
//
// Map layers typed values over a Store:
//
//	counts := blockstore.NewCodecMap(store, codec.Int64())
//	_ = counts.Put(ctx, "a", 3)
//	entries := counts.Entries(ctx)
package blockstore
