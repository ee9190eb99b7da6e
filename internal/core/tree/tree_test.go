package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesOrderAndLiterals(t *testing.T) {
	v, err := ParseString(`{"z":1,"a":[true,null,"x"],"n":1.50e3}`)
	require.NoError(t, err)
	require.True(t, v.IsObject())

	keys := []string{}
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"z", "a", "n"}, keys)

	n, ok := v.Get("n")
	require.True(t, ok)
	assert.Equal(t, KindNumber, n.Kind())
	assert.Equal(t, "1.50e3", n.Literal())

	assert.Equal(t, `{"z":1,"a":[true,null,"x"],"n":1.50e3}`, string(Marshal(v)))
}

func TestParse_DuplicateKeyLastWinsInFirstPosition(t *testing.T) {
	v, err := ParseString(`{"a":1,"b":2,"a":3}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"b":2}`, string(Marshal(v)))
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"trailing value": `[1] 2`,
		"trailing junk":  `[1];`,
		"unterminated":   `[1,2`,
		"trailing comma": `[1,]`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseString(in)
			assert.Error(t, err)
		})
	}
}

func TestParse_NestingLimit(t *testing.T) {
	nested := func(n int) string { return strings.Repeat("[", n) + strings.Repeat("]", n) }

	v, err := ParseString(nested(MaxDepth))
	require.NoError(t, err)
	assert.Equal(t, nested(MaxDepth), string(Marshal(v)))

	_, err = ParseString(nested(MaxDepth + 1))
	assert.ErrorIs(t, err, ErrTooDeep)

	_, err = ParseString(nested(3_000_000))
	assert.ErrorIs(t, err, ErrTooDeep)

	_, err = ParseString(strings.Repeat(`{"a":`, MaxDepth+1) + "1" + strings.Repeat("}", MaxDepth+1))
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestMarshal_EscapingIsMinimal(t *testing.T) {
	v := Object(
		M("text", String("こんにちは <b>&</b> \"q\" \\ \n\t\x01")),
	)
	got := string(Marshal(v))
	assert.Equal(t, `{"text":"こんにちは <b>&</b> \"q\" \\ \n\t\u0001"}`, got)
	assert.Equal(t, len(got), Size(v))
}

func TestMarshalArray_MatchesArrayValue(t *testing.T) {
	a := Object(M("id", Number("1")))
	b := Object(M("id", Number("2")), M("s", String("é")))
	assert.Equal(t, string(Marshal(Array(a, b))), string(MarshalArray([]Value{a, b})))
	assert.Equal(t, "[]", string(MarshalArray(nil)))
	assert.Equal(t, 2+Size(a)+1+Size(b), len(MarshalArray([]Value{a, b})))
}

func TestPath_ResolveAndString(t *testing.T) {
	v, err := ParseString(`{"tweet":{"entities":[{"date":"2021-01-05"},{"date":"x"}]}}`)
	require.NoError(t, err)

	p := KeyPath("tweet", "entities").Child(Idx(0)).Child(Key("date"))
	assert.Equal(t, "tweet.entities[0].date", p.String())

	got, ok := p.Resolve(v)
	require.True(t, ok)
	s, _ := got.Str()
	assert.Equal(t, "2021-01-05", s)

	_, ok = KeyPath("tweet", "missing").Resolve(v)
	assert.False(t, ok)
	_, ok = KeyPath("tweet").Child(Idx(0)).Resolve(v)
	assert.False(t, ok, "index into an object must fail")
	_, ok = KeyPath("tweet", "entities").Child(Idx(9)).Resolve(v)
	assert.False(t, ok)
}

func TestPath_ChildDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = Key("a")
	x := base.Child(Key("x"))
	y := base.Child(Key("y"))
	assert.Equal(t, "a.x", x.String())
	assert.Equal(t, "a.y", y.String())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "<array>", Array().Literal())
	assert.Equal(t, "null", Null().Literal())
	assert.Equal(t, "false", Bool(false).Literal())
}
