package batch

import (
	"fmt"
	"strings"
	"testing"

	"chronosplit/internal/core/normalize"
	"chronosplit/internal/core/tree"
	perr "chronosplit/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id int, text string) tree.Value {
	return tree.Object(
		tree.M("id", tree.String(fmt.Sprint(id))),
		tree.M("created_at", tree.String("2021-01-05")),
		tree.M("full_text", tree.String(text)),
	)
}

func flatten(bs []Batch) []tree.Value {
	var out []tree.Value
	for _, b := range bs {
		out = append(out, b.Records...)
	}
	return out
}

func sameRecords(t *testing.T, want, got []tree.Value) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, string(tree.Marshal(want[i])), string(tree.Marshal(got[i])), "record %d", i)
	}
}

func mixed() []tree.Value {
	var out []tree.Value
	for i := 0; i < 40; i++ {
		text := strings.Repeat("あい", i%7) + fmt.Sprintf(" line %d", i)
		if i%9 == 0 {
			text = "🎉" // renders to nothing in text mode
		}
		out = append(out, rec(i, text))
	}
	return out
}

func sizers() map[string]Sizer {
	return map[string]Sizer{
		"json": JSONSizer{},
		"text": TextSizer{R: normalize.New(normalize.Options{})},
	}
}

func TestSplit_SizesAreExactAndBounded(t *testing.T) {
	for name, s := range sizers() {
		for _, max := range []int{1, 40, 100, 257, 1000, 1 << 20} {
			t.Run(fmt.Sprintf("%s/%d", name, max), func(t *testing.T) {
				b, err := New(max, s)
				require.NoError(t, err)
				recs := mixed()
				bs, err := b.Split(recs)
				require.NoError(t, err)

				for i, bt := range bs {
					require.NotEmpty(t, bt.Records)
					assert.Equal(t, len(s.Encode(bt.Records)), bt.Size, "batch %d", i)
					if bt.Forced {
						assert.Len(t, bt.Records, 1)
						assert.Greater(t, bt.Size, max)
					} else {
						assert.LessOrEqual(t, bt.Size, max, "batch %d", i)
					}
				}
				sameRecords(t, recs, flatten(bs))
			})
		}
	}
}

func TestSplit_GreedyNeverLeavesRoom(t *testing.T) {
	s := JSONSizer{}
	recs := mixed()
	b, err := New(300, s)
	require.NoError(t, err)
	bs, err := b.Split(recs)
	require.NoError(t, err)
	// the first record of each batch would not have fit into the previous one
	for i := 1; i < len(bs); i++ {
		prev := bs[i-1]
		if prev.Forced {
			continue
		}
		grown := append(append([]tree.Value{}, prev.Records...), bs[i].Records[0])
		assert.Greater(t, len(s.Encode(grown)), 300, "batch %d", i)
	}
}

func TestSplit_OverflowLiveness(t *testing.T) {
	big := rec(1, strings.Repeat("x", 500))
	small := rec(2, "s")
	b, err := New(100, JSONSizer{})
	require.NoError(t, err)

	bs, err := b.Split([]tree.Value{small, big, small})
	require.NoError(t, err)
	require.Len(t, bs, 3)
	assert.False(t, bs[0].Forced)
	assert.True(t, bs[1].Forced)
	assert.Equal(t, 2+tree.Size(big), bs[1].Size)
	assert.False(t, bs[2].Forced)
}

func TestSplit_ConcreteScenarios(t *testing.T) {
	r1 := tree.Object(tree.M("created_at", tree.String("2021-01-05")))
	r2 := tree.Object(tree.M("created_at", tree.String("2021-01-20")))
	one := 2 + tree.Size(r1)
	two := 2 + tree.Size(r1) + 1 + tree.Size(r2)

	b, err := New(two, JSONSizer{})
	require.NoError(t, err)
	bs, err := b.Split([]tree.Value{r1, r2})
	require.NoError(t, err)
	require.Len(t, bs, 1)
	assert.Equal(t, two, bs[0].Size)

	b, err = New(two-1, JSONSizer{})
	require.NoError(t, err)
	require.Greater(t, two-1, one)
	bs, err = b.Split([]tree.Value{r1, r2})
	require.NoError(t, err)
	require.Len(t, bs, 2)
	sameRecords(t, []tree.Value{r1}, bs[0].Records)
	sameRecords(t, []tree.Value{r2}, bs[1].Records)
}

func TestTextSizer_EmptyLinesCostNothing(t *testing.T) {
	s := TextSizer{R: normalize.New(normalize.Options{})}
	noText := tree.Object(tree.M("id", tree.String("x")))
	recs := []tree.Value{noText, rec(1, "ab"), noText, rec(2, "cd"), noText}

	assert.Equal(t, "ab\ncd", string(s.Encode(recs)))

	b, err := New(5, s)
	require.NoError(t, err)
	bs, err := b.Split(recs)
	require.NoError(t, err)
	require.Len(t, bs, 1)
	assert.Equal(t, 5, bs[0].Size)
	assert.Len(t, bs[0].Records, 5)

	bs, err = (&Batcher{maxBytes: 4, sizer: s}).Split(recs)
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, 2, bs[0].Size)
	assert.Len(t, bs[0].Records, 3)
	assert.Len(t, bs[1].Records, 2)
}

func TestEach_StopsOnCallbackError(t *testing.T) {
	b, err := New(50, JSONSizer{})
	require.NoError(t, err)
	calls := 0
	stop := fmt.Errorf("stop")
	err = b.Each(mixed(), func(Batch) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestNew_RejectsBadBudget(t *testing.T) {
	_, err := New(0, JSONSizer{})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
	_, err = New(10, nil)
	assert.Error(t, err)

	bs, err := (&Batcher{maxBytes: 10, sizer: JSONSizer{}}).Split(nil)
	require.NoError(t, err)
	assert.Empty(t, bs)
}

// utf16Len is the UTF-16 size of UTF-8 content
func utf16Len(b []byte) int {
	n := 0
	for _, r := range string(b) {
		n += 2
		if r > 0xFFFF {
			n += 2
		}
	}
	return n
}

func TestSplit_BudgetCountsEncodedBytes(t *testing.T) {
	encoded := map[string]Sizer{
		"json": JSONSizer{Len: utf16Len},
		"text": TextSizer{R: normalize.New(normalize.Options{}), Len: utf16Len},
	}
	for name, s := range encoded {
		for _, max := range []int{60, 200, 513} {
			t.Run(fmt.Sprintf("%s/%d", name, max), func(t *testing.T) {
				b, err := New(max, s)
				require.NoError(t, err)
				recs := mixed()
				bs, err := b.Split(recs)
				require.NoError(t, err)

				for i, bt := range bs {
					assert.Equal(t, utf16Len(s.Encode(bt.Records)), bt.Size, "batch %d", i)
					if !bt.Forced {
						assert.LessOrEqual(t, bt.Size, max, "batch %d", i)
					}
				}
				sameRecords(t, recs, flatten(bs))
			})
		}
	}

	// three 5-byte lines fit 17 bytes as UTF-8 but not once doubled
	hello := []tree.Value{rec(1, "hello"), rec(2, "hello"), rec(3, "hello")}
	b, err := New(17, TextSizer{R: normalize.New(normalize.Options{}), Len: utf16Len})
	require.NoError(t, err)
	bs, err := b.Split(hello)
	require.NoError(t, err)
	require.Len(t, bs, 3)
	for _, bt := range bs {
		assert.Equal(t, 10, bt.Size)
		assert.False(t, bt.Forced)
	}
}
