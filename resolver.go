package pushdown

// resolution is the single effective transition decided for one tick.
type resolution struct {
	kind   Kind
	target string
	cause  Cause
	fault  error
}

// resolve decides the one transition to apply for the active frame, in
// fixed precedence order: a handler fault routes through the exception
// map; an expired timeout forces its target even when the handler
// returned a transition (the return value is discarded); otherwise the
// handler's outcome stands; an implicit stay is checked against the
// retry limit before it is finalized. Exceptions, timeouts and exceeded
// retries always resolve to a sibling goto.
func resolve(fr *frame, out Outcome, fault error, timedOut bool, defaultError, finalState string) resolution {
	d := fr.desc

	if fault != nil {
		return resolution{
			kind:   KindGoto,
			target: d.routeFault(fault, defaultError),
			cause:  CauseException,
			fault:  fault,
		}
	}

	if timedOut {
		target := d.timeoutTarget
		if target == "" {
			target = defaultError
		}

		return resolution{kind: KindGoto, target: target, cause: CauseTimeout}
	}

	switch out.kind {
	case KindGoto, KindPush:
		return resolution{kind: out.kind, target: out.target, cause: CauseNormal}
	case KindPop:
		return resolution{kind: KindPop, cause: CauseNormal}
	case KindFinish:
		return resolution{kind: KindGoto, target: finalState, cause: CauseNormal}
	case KindStay:
	}

	if d.hasRetry && fr.retryCount+1 > d.retryLimit {
		target := d.retryTarget
		if target == "" {
			target = defaultError
		}

		return resolution{kind: KindGoto, target: target, cause: CauseRetryExceeded}
	}

	return resolution{kind: KindStay, cause: CauseNormal}
}
