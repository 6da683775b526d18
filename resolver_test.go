package pushdown

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	errResolverIO   = errors.New("io fault")
	errResolverAuth = errors.New("auth fault")
)

func resolverFrame(configure func(*Descriptor)) *frame {
	desc := NewRegistry().State("working")
	if configure != nil {
		configure(desc)
	}

	return newFrame(desc, time.Now())
}

func TestResolvePrecedence(t *testing.T) {
	t.Parallel()

	t.Run("fault beats timeout and handler outcome", func(t *testing.T) {
		t.Parallel()

		fr := resolverFrame(func(d *Descriptor) {
			d.Timeout(time.Second, "stalled")
			d.RouteFault(errResolverIO, "recovery")
		})

		res := resolve(fr, Goto("next"), errResolverIO, true, "failed", "done")

		assert.Equal(t, KindGoto, res.kind)
		assert.Equal(t, "recovery", res.target)
		assert.Equal(t, CauseException, res.cause)
		assert.ErrorIs(t, res.fault, errResolverIO)
	})

	t.Run("timeout discards handler outcome", func(t *testing.T) {
		t.Parallel()

		fr := resolverFrame(func(d *Descriptor) {
			d.Timeout(time.Second, "stalled")
		})

		res := resolve(fr, Goto("next"), nil, true, "failed", "done")

		assert.Equal(t, KindGoto, res.kind)
		assert.Equal(t, "stalled", res.target)
		assert.Equal(t, CauseTimeout, res.cause)
	})

	t.Run("handler outcome stands without fault or timeout", func(t *testing.T) {
		t.Parallel()

		fr := resolverFrame(nil)

		res := resolve(fr, Push("child"), nil, false, "failed", "done")

		assert.Equal(t, KindPush, res.kind)
		assert.Equal(t, "child", res.target)
		assert.Equal(t, CauseNormal, res.cause)
	})

	t.Run("implicit stay", func(t *testing.T) {
		t.Parallel()

		fr := resolverFrame(nil)

		res := resolve(fr, Stay(), nil, false, "failed", "done")

		assert.Equal(t, KindStay, res.kind)
		assert.Equal(t, CauseNormal, res.cause)
	})
}

func TestResolveFinish(t *testing.T) {
	t.Parallel()

	fr := resolverFrame(nil)

	res := resolve(fr, Finish(), nil, false, "failed", "done")

	assert.Equal(t, KindGoto, res.kind)
	assert.Equal(t, "done", res.target)
	assert.Equal(t, CauseNormal, res.cause)
}

func TestResolveTimeoutWithoutTarget(t *testing.T) {
	t.Parallel()

	fr := resolverFrame(func(d *Descriptor) {
		d.timeout = time.Second
	})

	res := resolve(fr, Stay(), nil, true, "failed", "done")

	assert.Equal(t, "failed", res.target)
	assert.Equal(t, CauseTimeout, res.cause)
}

func TestResolveRetryLimit(t *testing.T) {
	t.Parallel()

	t.Run("stay under the limit", func(t *testing.T) {
		t.Parallel()

		fr := resolverFrame(func(d *Descriptor) {
			d.Retries(2, "gave_up")
		})
		fr.retryCount = 1

		res := resolve(fr, Stay(), nil, false, "failed", "done")

		assert.Equal(t, KindStay, res.kind)
	})

	t.Run("stay exceeding the limit", func(t *testing.T) {
		t.Parallel()

		fr := resolverFrame(func(d *Descriptor) {
			d.Retries(2, "gave_up")
		})
		fr.retryCount = 2

		res := resolve(fr, Stay(), nil, false, "failed", "done")

		assert.Equal(t, KindGoto, res.kind)
		assert.Equal(t, "gave_up", res.target)
		assert.Equal(t, CauseRetryExceeded, res.cause)
	})

	t.Run("limit without target falls back to the error state", func(t *testing.T) {
		t.Parallel()

		fr := resolverFrame(func(d *Descriptor) {
			d.hasRetry = true
			d.retryLimit = 0
		})

		res := resolve(fr, Stay(), nil, false, "failed", "done")

		assert.Equal(t, "failed", res.target)
		assert.Equal(t, CauseRetryExceeded, res.cause)
	})

	t.Run("explicit transition resets nothing here but bypasses the limit", func(t *testing.T) {
		t.Parallel()

		fr := resolverFrame(func(d *Descriptor) {
			d.Retries(0, "gave_up")
		})

		res := resolve(fr, Goto("next"), nil, false, "failed", "done")

		assert.Equal(t, KindGoto, res.kind)
		assert.Equal(t, "next", res.target)
	})
}

func TestResolveFaultRouting(t *testing.T) {
	t.Parallel()

	makeFrame := func() *frame {
		return resolverFrame(func(d *Descriptor) {
			d.RouteFault(errResolverIO, "recovery")
			d.RouteAnyFault("fallback")
		})
	}

	t.Run("mapped class wins", func(t *testing.T) {
		t.Parallel()

		res := resolve(makeFrame(), Stay(), errResolverIO, false, "failed", "done")

		assert.Equal(t, "recovery", res.target)
	})

	t.Run("wrapped fault matches via errors.Is", func(t *testing.T) {
		t.Parallel()

		wrapped := fmt.Errorf("read config: %w", errResolverIO)

		res := resolve(makeFrame(), Stay(), wrapped, false, "failed", "done")

		assert.Equal(t, "recovery", res.target)
		assert.ErrorIs(t, res.fault, errResolverIO)
	})

	t.Run("unmapped class falls to the wildcard", func(t *testing.T) {
		t.Parallel()

		res := resolve(makeFrame(), Stay(), errResolverAuth, false, "failed", "done")

		assert.Equal(t, "fallback", res.target)
	})

	t.Run("no routes at all falls to the default error state", func(t *testing.T) {
		t.Parallel()

		fr := resolverFrame(nil)

		res := resolve(fr, Stay(), errResolverAuth, false, "failed", "done")

		assert.Equal(t, "failed", res.target)
		assert.Equal(t, CauseException, res.cause)
	})
}
