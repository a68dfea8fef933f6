package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes seqctl with an empty config file so no config is picked up
// from the working directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := writeFile(t, "seqctl.yml", "logging:\n  level: warn\n")
	cmd := newRootCmd()
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("seqctl %v: %v", args, err)
	}
	return out
}

func TestCommands(t *testing.T) {
	a := writeFile(t, "a.tsv", "a\t1\nc\t3\n\ne\t5\n")
	b := writeFile(t, "b.tsv", "b\t2\nd\t4\n")
	left := writeFile(t, "left.tsv", "1\ta\n2\tb\n2\tc\n4\td\n")
	right := writeFile(t, "right.tsv", "2\tx\n2\ty\n3\tz\n4\tw\n")
	counts := writeFile(t, "counts.tsv", "a\t1\na\t2\nb\t3\n")
	moreCounts := writeFile(t, "more.tsv", "a\t4\nc\t-1\n")
	groups := writeFile(t, "groups.tsv", "1\tx\n1\ty\n2\tz\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"merge", []string{"merge", a, b}, "a\t1\nb\t2\nc\t3\nd\t4\ne\t5\n"},
		{"merge single", []string{"merge", b}, "b\t2\nd\t4\n"},
		{"merge limit", []string{"merge", "--limit", "2", a, b}, "a\t1\nb\t2\n"},
		{"join", []string{"join", left, right}, "2\tb\tx\n2\tc\tx\n2\tb\ty\n2\tc\ty\n4\td\tw\n"},
		{"reduce", []string{"reduce", counts, moreCounts}, "a\t7\nb\t3\nc\t-1\n"},
		{"group", []string{"group", groups}, "1\tx,y\n2\tz\n"},
		{"sample keeps all", []string{"sample", "--step", "3", "--max", "3", a}, "a\t1\nc\t3\ne\t5\n"},
		{"sample keeps none", []string{"sample", "--step", "0", "--max", "3", a}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustRun(t, tt.args...); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReduce_Hash(t *testing.T) {
	keys := []string{"apple", "kiwi", "pear", "plum"}
	slices.SortFunc(keys, fnvOrder)
	var in, want strings.Builder
	for _, k := range keys {
		in.WriteString(k + "\t1\n" + k + "\t2\n")
		want.WriteString(k + "\t3\n")
	}
	got := mustRun(t, "reduce", "--hash", writeFile(t, "hashed.tsv", in.String()))
	if got != want.String() {
		t.Errorf("got %q, want %q", got, want.String())
	}
}

func TestSample_Seeded(t *testing.T) {
	var in strings.Builder
	for i := range 100 {
		in.WriteString(strings.Repeat("k", 1+i%5) + "\tv\n")
	}
	path := writeFile(t, "in.tsv", in.String())
	first := mustRun(t, "sample", "--step", "1", "--max", "2", "--seed", "7", path)
	second := mustRun(t, "sample", "--step", "1", "--max", "2", "--seed", "7", path)
	if first != second {
		t.Error("same seed produced different samples")
	}
	n := strings.Count(first, "\n")
	if n == 0 || n == 100 {
		t.Errorf("sampled %d of 100 lines", n)
	}
}

func TestConfigPrecedence(t *testing.T) {
	a := writeFile(t, "a.tsv", "a\t1\nb\t2\nc\t3\n")

	t.Setenv("SEQKIT_LIMIT", "1")
	if got := mustRun(t, "merge", a); got != "a\t1\n" {
		t.Errorf("env limit: got %q", got)
	}
	if got := mustRun(t, "merge", "--limit", "2", a); got != "a\t1\nb\t2\n" {
		t.Errorf("flag limit: got %q", got)
	}
}

func TestSeparator(t *testing.T) {
	path := writeFile(t, "a.csv", "b,2\na,1\n")
	got := mustRun(t, "merge", "--separator", ",", path)
	if got != "b,2\na,1\n" {
		t.Errorf("got %q", got)
	}
}

func TestErrors(t *testing.T) {
	noSep := writeFile(t, "bad.tsv", "a\t1\noops\n")
	notInt := writeFile(t, "nan.tsv", "a\tone\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing separator", []string{"merge", noSep}, "no separator"},
		{"not an integer", []string{"reduce", notInt}, "invalid input"},
		{"missing file", []string{"merge", filepath.Join(t.TempDir(), "nope.tsv")}, "no such file"},
		{"bad backend", []string{"store", "dump", "--store", "disk"}, "backend"},
		{"bad sample max", []string{"sample", "--max", "0", noSep}, "max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestStore_Redis(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mini.Close)
	redisFlags := []string{"--store", "redis", "--redis-addr", mini.Addr()}
	withRedis := func(args ...string) []string { return append(slices.Clone(redisFlags), args...) }

	data := writeFile(t, "data.tsv", "b\t2\na\t1\nb\t20\n")
	mustRun(t, withRedis("store", "load", data)...)

	dump := strings.Split(strings.TrimSpace(mustRun(t, withRedis("store", "dump")...)), "\n")
	slices.Sort(dump)
	if !slices.Equal(dump, []string{"a\t1", "b\t20"}) {
		t.Errorf("dump = %q", dump)
	}

	payload := filepath.Join(t.TempDir(), "store.bin")
	mustRun(t, withRedis("store", "export", payload)...)
	mustRun(t, withRedis("--redis-hash", "copy", "store", "import", payload)...)
	if got := mini.HGet("copy", "b"); got == "" {
		t.Error("expected imported entry in the copy hash")
	}

	health := mustRun(t, withRedis("health")...)
	if !strings.Contains(health, `"status": "up"`) || !strings.Contains(health, "blockstore.redis") {
		t.Errorf("health = %s", health)
	}

	mini.Close()
	if _, err := run(t, withRedis("health")...); err == nil {
		t.Error("expected health to fail with redis down")
	}
}

func TestHealth_Memory(t *testing.T) {
	out := mustRun(t, "health")
	if !strings.Contains(out, "blockstore.memory") {
		t.Errorf("health = %s", out)
	}
}

func TestVersionFlag(t *testing.T) {
	out := mustRun(t, "--version")
	if !strings.HasPrefix(out, "seqctl version ") {
		t.Errorf("got %q", out)
	}
}
