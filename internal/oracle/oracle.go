// internal/oracle/oracle.go
//
// The question oracle: turns a free-text question about a hidden location into
// exactly one of Yes / No / Maybe.
//
// Policy:
//   - One model call per question, no retries.
//   - Model output is trimmed and matched against the closed set; anything else is Maybe.
//   - If the call fails, the answer is a uniform random pick among the three tokens.
//     The player never sees an error from this package.
package oracle

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/geoquest/internal/geo"
	"github.com/robalobadob/geoquest/internal/metrics"
)

// Oracle answers questions about a location.
type Oracle struct {
	model   Model
	metrics *metrics.Metrics
	intn    func(n int) int
}

// New wraps model. m may be nil.
func New(model Model, m *metrics.Metrics) *Oracle {
	return &Oracle{model: model, metrics: m, intn: rand.IntN}
}

// WithRand replaces the random source used by the fallback.
func (o *Oracle) WithRand(intn func(n int) int) *Oracle {
	o.intn = intn
	return o
}

// Ask returns the model's answer, or the fallback answer if the model call fails.
func (o *Oracle) Ask(ctx context.Context, question string, loc geo.Location) geo.Answer {
	start := time.Now()
	text, err := o.model.Complete(ctx, SystemPrompt(loc), UserPrompt(question, loc))
	o.metrics.ObserveOracle(time.Since(start))
	if err != nil {
		ans := o.fallback()
		o.metrics.OracleFallback("error")
		log.Warn().Err(err).Str("fallback", string(ans)).Msg("oracle call failed")
		return ans
	}

	ans, ok := Normalize(text)
	if !ok {
		o.metrics.OracleFallback("unparseable")
		log.Debug().Str("raw", text).Msg("oracle reply outside answer set")
	}
	return ans
}

// Normalize trims s and matches it against the answer set.
// The second result is false when s had to be coerced to Maybe.
func Normalize(s string) (geo.Answer, bool) {
	switch a := geo.Answer(strings.TrimSpace(s)); a {
	case geo.AnswerYes, geo.AnswerNo, geo.AnswerMaybe:
		return a, true
	default:
		return geo.AnswerMaybe, false
	}
}

func (o *Oracle) fallback() geo.Answer {
	return geo.Answers[o.intn(len(geo.Answers))]
}
