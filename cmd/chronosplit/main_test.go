package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	kit "chronosplit/internal/platform/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archive = `window.YTD.tweets.part0 = [
 {"tweet":{"id":"1","created_at":"Tue Jan 05 10:00:00 +0000 2021","full_text":"first"}},
 {"tweet":{"id":"2","created_at":"Wed Jan 20 10:00:00 +0000 2021","full_text":"second"}},
 {"tweet":{"id":"3","created_at":"Mon Feb 01 10:00:00 +0000 2021","full_text":"third"}}
]`

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	code := run(context.Background(), args, &out, &errb)
	return code, out.String(), errb.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "chronosplit dev")
}

func TestRun_UsageErrors(t *testing.T) {
	code, _, errOut := runCLI(t, "--no-such-flag")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown flag")

	code, _, errOut = runCLI(t, "only-one-arg")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage: chronosplit")

	in := kit.WriteFile(t, "tweets.js", []byte(archive))
	code, _, _ = runCLI(t, "--group-by", "week", in, t.TempDir())
	assert.Equal(t, 2, code)
}

func TestRun_SplitsArchive(t *testing.T) {
	in := kit.WriteFile(t, "tweets.js", []byte(archive))
	out := filepath.Join(t.TempDir(), "out")

	code, stdout, _ := runCLI(t, in, out)
	require.Equal(t, 0, code)
	assert.Equal(t, []string{"2021-01_part_1.json", "2021-02_part_1.json"}, kit.ListDir(t, out))
	assert.Contains(t, stdout, "wrote 2 file(s)")
}

func TestRun_PositionalSizeAndTextFlag(t *testing.T) {
	in := kit.WriteFile(t, "tweets.js", []byte(archive))
	out := t.TempDir()

	code, _, _ := runCLI(t, "--text-only", "--group-by=all", in, out, "1")
	require.Equal(t, 0, code)
	assert.Equal(t, []string{"all_part_1.txt"}, kit.ListDir(t, out))
	assert.Equal(t, "first\nsecond\nthird", kit.ReadString(t, filepath.Join(out, "all_part_1.txt")))
}

func TestRun_BadPositionalSizeKeepsDefault(t *testing.T) {
	in := kit.WriteFile(t, "tweets.js", []byte(archive))
	for _, mb := range []string{"zero", "0", "NaN", "0.0000001"} {
		out := t.TempDir()
		code, stdout, _ := runCLI(t, in, out, mb)
		require.Equal(t, 0, code, mb)
		assert.Equal(t, []string{"2021-01_part_1.json", "2021-02_part_1.json"}, kit.ListDir(t, out), mb)
		assert.Contains(t, stdout, "wrote 2 file(s)", mb)
	}
}

func TestRun_KeyListFlags(t *testing.T) {
	in := kit.WriteFile(t, "export.json", []byte(`{"posts":[
 {"id":"1","posted_at":"2021-03-01","body":"spring"},
 {"id":"2","posted_at":"2021-07-01","body":"summer"}
]}`))
	out := t.TempDir()

	code, _, _ := runCLI(t, "-t", "-g", "all", "--array-keys", "posts", "--timestamp-keys", "posted_at", "--text-keys", "body", in, out)
	require.Equal(t, 0, code)
	assert.Equal(t, "spring\nsummer", kit.ReadString(t, filepath.Join(out, "all_part_1.txt")))

	code, _, _ = runCLI(t, in, t.TempDir())
	assert.Equal(t, 4, code)
}

func TestRun_FlagSizeOverridesPositional(t *testing.T) {
	in := kit.WriteFile(t, "tweets.js", []byte(archive))
	out := t.TempDir()

	code, _, _ := runCLI(t, "-t", "--max-size", "6", "-g", "all", in, out, "1")
	require.Equal(t, 0, code)
	assert.Equal(t, []string{"all_part_1.txt", "all_part_2.txt", "all_part_3.txt"}, kit.ListDir(t, out))
}

func TestRun_ConfigFileAndEnv(t *testing.T) {
	in := kit.WriteFile(t, "tweets.js", []byte(archive))
	out := t.TempDir()
	cfg := kit.WriteFile(t, "chronosplit.toml", []byte("group_by = \"year\"\ntext_only = true\n"))
	t.Setenv("CHRONOSPLIT_TEXT_ONLY", "false")

	code, _, _ := runCLI(t, "--config", cfg, in, out)
	require.Equal(t, 0, code)
	assert.Equal(t, []string{"2021_part_1.json"}, kit.ListDir(t, out))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	in := kit.WriteFile(t, "tweets.js", []byte(archive))
	out := filepath.Join(t.TempDir(), "out")

	code, stdout, _ := runCLI(t, "--dry-run", in, out)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "would write 2 file(s)")
	assert.NoDirExists(t, out)
}

func TestRun_ExitCodes(t *testing.T) {
	code, _, _ := runCLI(t, filepath.Join(t.TempDir(), "missing.json"), t.TempDir())
	assert.Equal(t, 3, code)

	in := kit.WriteFile(t, "likes.json", []byte(`{"likes":[{"id":1}]}`))
	code, _, _ = runCLI(t, in, t.TempDir())
	assert.Equal(t, 4, code)

	in = kit.WriteFile(t, "empty.json", []byte(`[]`))
	out := t.TempDir()
	code, stdout, _ := runCLI(t, in, out)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "nothing written")
	assert.Empty(t, kit.ListDir(t, out))
}
