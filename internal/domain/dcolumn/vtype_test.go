package dcolumn

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcolumn/internal/core/apperror"
)

func mustCodec(t *testing.T, vt ValueType) Codec {
	t.Helper()
	c, err := CodecFor(vt)
	require.NoError(t, err)
	return c
}

func TestCodecForUnknownType(t *testing.T) {
	_, err := CodecFor(ValueType(0))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownValueType))
}

func TestBooleanCodec(t *testing.T) {
	c := mustCodec(t, TypeBoolean)

	for _, in := range []string{"1", "true", "TRUE", "yes", "42"} {
		got, err := c.ParseInput(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, "1", got, "input %q", in)
	}
	for _, in := range []string{"0", "false", "No"} {
		got, err := c.ParseInput(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, "0", got, "input %q", in)
	}

	_, err := c.ParseInput("maybe")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBadInput))

	v, err := c.ParseStore("1")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = c.ParseStore("garbage")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBadStoredValue))
}

func TestChoiceCodec(t *testing.T) {
	c := mustCodec(t, TypeChoice)

	got, err := c.ParseInput(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	// pk 0 is the "no reference" sentinel and stores fine.
	got, err = c.ParseInput("0")
	require.NoError(t, err)
	assert.Equal(t, "0", got)

	_, err = c.ParseInput("-3")
	require.Error(t, err)
	_, err = c.ParseInput("abc")
	require.Error(t, err)

	v, err := c.ParseStore("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)
}

func TestDateCodec(t *testing.T) {
	c := mustCodec(t, TypeDate)

	// ISO and natural forms both canonicalize to ISO.
	for _, in := range []string{"2016-04-03", "3 April, 2016", "April 3, 2016"} {
		got, err := c.ParseInput(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, "2016-04-03", got, "input %q", in)
	}

	_, err := c.ParseInput("not a date")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBadInput))

	v, err := c.ParseStore("2016-04-03")
	require.NoError(t, err)
	ts, ok := v.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2016, ts.Year())
	assert.Equal(t, time.April, ts.Month())
	assert.Equal(t, 3, ts.Day())

	enc, err := c.EncodeStore(time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2020-12-31", enc)
}

func TestDateTimeCodec(t *testing.T) {
	c := mustCodec(t, TypeDateTime)

	got, err := c.ParseInput("2016-04-03 14:30:00")
	require.NoError(t, err)
	assert.Equal(t, "2016-04-03T14:30:00Z", got)

	v, err := c.ParseStore(got)
	require.NoError(t, err)
	ts := v.(time.Time)
	assert.Equal(t, 14, ts.Hour())
}

func TestTimeCodec(t *testing.T) {
	c := mustCodec(t, TypeTime)

	got, err := c.ParseInput("14:30")
	require.NoError(t, err)
	assert.Equal(t, "14:30:00", got)

	_, err = c.ParseInput("25:99")
	require.Error(t, err)
}

func TestFloatCodec(t *testing.T) {
	c := mustCodec(t, TypeFloat)

	got, err := c.ParseInput("19.99")
	require.NoError(t, err)
	assert.Equal(t, "19.99", got)

	v, err := c.ParseStore("19.99")
	require.NoError(t, err)
	d := v.(decimal.Decimal)
	assert.True(t, d.Equal(decimal.RequireFromString("19.99")))

	_, err = c.ParseInput("1.2.3")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBadInput))
}

func TestNumberCodec(t *testing.T) {
	c := mustCodec(t, TypeNumber)

	got, err := c.ParseInput(" 250 ")
	require.NoError(t, err)
	assert.Equal(t, "250", got)

	v, err := c.ParseStore("-17")
	require.NoError(t, err)
	assert.Equal(t, int64(-17), v)

	_, err = c.ParseInput("3.14")
	require.Error(t, err)
}

func TestTextCodecs(t *testing.T) {
	text := mustCodec(t, TypeText)
	block := mustCodec(t, TypeTextBlock)

	got, err := text.ParseInput("anything at all")
	require.NoError(t, err)
	assert.Equal(t, "anything at all", got)

	assert.Equal(t, 250, text.MaxLength())
	assert.Equal(t, 2000, block.MaxLength())
	assert.Equal(t, 1, mustCodec(t, TypeBoolean).MaxLength())
	assert.Equal(t, 12, mustCodec(t, TypeChoice).MaxLength())
	assert.Equal(t, 305, mustCodec(t, TypeFloat).MaxLength())
}
