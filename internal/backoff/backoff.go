// Package backoff computes delays between retry attempts.
package backoff

import (
	"math/rand"
	"time"
)

// Strategy turns a zero-based retry index and the policy bounds into a
// concrete delay.
type Strategy interface {
	Delay(retry int, initial, max time.Duration, multiplier, jitter float64) time.Duration
}

// Policy bundles a Strategy with its parameters. The zero value means "no
// delay between attempts".
type Policy struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
	Strategy   Strategy
}

// Delay returns the wait before retry number retry (zero-based, i.e. the
// delay preceding the second attempt is Delay(0)).
func (p Policy) Delay(retry int) time.Duration {
	if p.Initial <= 0 || p.Strategy == nil {
		return 0
	}
	max := p.Max
	if max < p.Initial {
		max = p.Initial
	}
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	return p.Strategy.Delay(retry, p.Initial, max, multiplier, p.Jitter)
}

// ExponentialJitter grows the delay geometrically and adds uniform jitter.
type ExponentialJitter struct{}

// Delay implements Strategy.
func (ExponentialJitter) Delay(retry int, initial, max time.Duration, multiplier, jitter float64) time.Duration {
	if retry < 0 {
		retry = 0
	}
	// Cap the exponent so the float math cannot overflow.
	if retry > 30 {
		retry = 30
	}

	d := time.Duration(float64(initial) * pow(multiplier, retry))
	if d < 0 || d > max {
		d = max
	}

	jitter = clampJitter(jitter)
	if jitter > 0 {
		extra := time.Duration(float64(d) * jitter * rand.Float64())
		if d+extra > max {
			d = max
		} else {
			d += extra
		}
	}
	return d
}

// DecorrelatedJitter implements AWS-style decorrelated jitter: a delay drawn
// uniformly between the base and three times the previous window. It gives
// smoother tail latencies than plain exponential jitter.
type DecorrelatedJitter struct{}

// Delay implements Strategy. The jitter parameter is unused; randomness is
// inherent to the scheme.
func (DecorrelatedJitter) Delay(retry int, initial, max time.Duration, multiplier, jitter float64) time.Duration {
	if retry <= 0 {
		return initial
	}
	if retry > 10 {
		retry = 10
	}

	base := float64(initial)
	upper := base * pow(3.0, retry)
	if upper > float64(max) || upper < 0 {
		upper = float64(max)
	}
	if upper < base {
		upper = base
	}

	d := time.Duration(base + rand.Float64()*(upper-base))
	if d < 0 || d > max {
		d = max
	}
	return d
}

func clampJitter(jitter float64) float64 {
	if jitter < 0 {
		return 0
	}
	if jitter > 1 {
		return 1
	}
	return jitter
}

func pow(base float64, exponent int) float64 {
	result := 1.0
	for i := 0; i < exponent; i++ {
		result *= base
	}
	return result
}
