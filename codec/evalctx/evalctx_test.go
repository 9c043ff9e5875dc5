package evalctx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleTruncateNonStrictWarns(t *testing.T) {
	ctx := New()
	err := ctx.HandleTruncate(errors.New("boom"))
	assert.NoError(t, err)
	assert.Equal(t, 1, ctx.Warnings.WarningCount())
}

func TestHandleTruncateStrictErrors(t *testing.T) {
	ctx := New()
	ctx.SQLMode = ModeStrictAllTables
	err := ctx.HandleTruncate(errors.New("boom"))
	assert.Error(t, err)
	assert.Equal(t, 0, ctx.Warnings.WarningCount())
}

func TestHandleTruncateStrictWithIgnoreTruncateWarns(t *testing.T) {
	ctx := New()
	ctx.SQLMode = ModeStrictAllTables
	ctx.Flags = FlagIgnoreTruncate
	err := ctx.HandleTruncate(errors.New("boom"))
	assert.NoError(t, err)
	assert.Equal(t, 1, ctx.Warnings.WarningCount())
}

func TestFrozenNowUnderTestMode(t *testing.T) {
	ctx := New()
	ctx.Flags = FlagTestMode
	assert.Equal(t, FrozenNow, ctx.Now())
}

func TestWarningSinkReset(t *testing.T) {
	ctx := New()
	ctx.AppendWarning(errors.New("a"))
	ctx.AppendWarning(errors.New("b"))
	assert.Equal(t, 2, ctx.Warnings.WarningCount())
	ctx.Warnings.Reset()
	assert.Equal(t, 0, ctx.Warnings.WarningCount())
}
