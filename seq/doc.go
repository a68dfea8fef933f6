// Package seq provides composable, single-pass, pull-based iterators.
//
// An Iterator is consumed with HasNext/Next until exhausted. Operators wrap
// iterators lazily and take exclusive ownership of what they wrap: no
// operator evaluates anything until its result is pulled, and none buffers
// more than one key-group of its input.
//
// # Operators
//
// Element-wise:
//
//   - Map, Filter, FlatMap, Concat, ConcatAll, Limit, Sample, ZipIndex, Batch
//   - AutoClose: run a cleanup when the wrapped iterator first runs dry
//
// Ordered (inputs must already be sorted by the supplied comparator):
//
//   - MergeSorted: k-way merge through a binary heap
//   - ReduceSorted: fold adjacent equal keys in place
//   - ReduceHashSorted: fold keys that are only grouped by a coarser order
//   - MergeJoin: inner sort-merge join with duplicate left keys
//   - MapGroupSorted: hand each key-group to a function as its own iterator
//
// Lookahead:
//
//   - PeekIterator, StopAtFirstMatching
//
// # Errors
//
// Next on an exhausted iterator returns an error matching ErrExhausted.
// Operators that must pull from their source inside HasNext keep a failure
// pending: HasNext reports true and the following Next returns the error.
// Nil functions, nil iterators and out-of-range arguments are programmer
// errors and make the constructor panic with an *errors.AppError whose code
// is INVALID_ARGUMENT.
//
// # Usage
//
//	left := seq.FromSlice([]int{1, 3, 5})
//	right := seq.FromSlice([]int{2, 4})
//	merged := seq.MergeSorted(cmp.Compare[int], left, right)
//	out, _ := seq.Collect(merged) // [1 2 3 4 5]
package seq
