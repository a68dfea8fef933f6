package main

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/pipeline"
	"github.com/kbukum/seqkit/seq"
)

// line is one parsed input line.
type line = *seq.KeyedValue[string, string]

func byKey[V any](a, b *seq.KeyedValue[string, V]) int {
	return strings.Compare(a.Key(), b.Key())
}

// fnvOrder orders keys by their 32-bit FNV-1a hash.
func fnvOrder(a, b string) int {
	return cmp.Compare(fnv32(a), fnv32(b))
}

func fnv32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// lineFile reads key/value lines from path. The file is opened when the
// pipeline runs and closed when it ends.
func lineFile(path, sep string) *pipeline.Pipeline[line] {
	return pipeline.Open(path, func(context.Context) (seq.Iterator[line], func() error, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, errors.InvalidInput("file", err.Error())
		}
		return newLineIter(f, path, sep), f.Close, nil
	})
}

func lineFiles(paths []string, sep string) []*pipeline.Pipeline[line] {
	out := make([]*pipeline.Pipeline[line], len(paths))
	for i, p := range paths {
		out[i] = lineFile(p, sep)
	}
	return out
}

// lineIter parses lines lazily. Blank lines are skipped. A line without
// the separator is returned as an error and skipped.
type lineIter struct {
	sc     *bufio.Scanner
	path   string
	sep    string
	lineNo int
	next   line
	ready  bool
	err    error
	done   bool
}

func newLineIter(r io.Reader, path, sep string) *lineIter {
	return &lineIter{sc: bufio.NewScanner(r), path: path, sep: sep}
}

func (it *lineIter) HasNext() bool {
	if it.ready || it.err != nil {
		return true
	}
	for !it.done && it.sc.Scan() {
		it.lineNo++
		text := it.sc.Text()
		if text == "" {
			continue
		}
		k, v, ok := strings.Cut(text, it.sep)
		if !ok {
			it.err = errors.InvalidInput("line", fmt.Sprintf("%s:%d has no separator", it.path, it.lineNo))
			return true
		}
		it.next, it.ready = seq.NewKeyedValue(k, v), true
		return true
	}
	if !it.done {
		it.done = true
		if err := it.sc.Err(); err != nil {
			it.err = fmt.Errorf("read %s: %w", it.path, err)
			return true
		}
	}
	return false
}

func (it *lineIter) Next() (line, error) {
	if !it.HasNext() {
		return nil, errors.Exhausted()
	}
	if it.err != nil {
		err := it.err
		it.err = nil
		return nil, err
	}
	it.ready = false
	return it.next, nil
}

// parseInts converts line values to integers.
func parseInts(p *pipeline.Pipeline[line]) *pipeline.Pipeline[*seq.KeyedValue[string, int64]] {
	return pipeline.Map(p, func(_ context.Context, l line) (*seq.KeyedValue[string, int64], error) {
		n, err := strconv.ParseInt(strings.TrimSpace(l.Value()), 10, 64)
		if err != nil {
			return nil, errors.InvalidInput("value", fmt.Sprintf("key %q: %v", l.Key(), err))
		}
		return seq.NewKeyedValue(l.Key(), n), nil
	})
}
