package audiograph

import (
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/padsynth/state"
)

// Params holds the parsed configuration of one axis effect.
type Params struct {
	Type   string
	Amount float64
	Num    map[string]float64
	Str    map[string]string
}

// GetNum safely extracts a numeric parameter, returning def if missing or invalid.
func (p Params) GetNum(key string, def float64) float64 {
	if p.Num == nil {
		return def
	}

	v, ok := p.Num[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// GetStr extracts a string parameter, returning def if missing or empty.
func (p Params) GetStr(key, def string) string {
	v := strings.TrimSpace(p.Str[key])
	if v == "" {
		return def
	}

	return v
}

// newParams builds Params from an effect configuration. The amount is
// clamped to [0, 1].
func newParams(cfg state.EffectConfig) Params {
	num, str := parseOptions(cfg.Options)

	amount := cfg.Amount
	if math.IsNaN(amount) {
		amount = 0
	}

	return Params{
		Type:   cfg.Name,
		Amount: clamp(amount, 0, 1),
		Num:    num,
		Str:    str,
	}
}

// parseOptions splits raw options into numeric and string parameters.
// Numeric strings such as "5" land in both maps.
func parseOptions(opts state.Options) (map[string]float64, map[string]string) {
	num := map[string]float64{}
	str := map[string]string{}

	for k, v := range opts {
		switch t := v.(type) {
		case float64:
			num[k] = t
		case float32:
			num[k] = float64(t)
		case int:
			num[k] = float64(t)
		case int64:
			num[k] = float64(t)
		case string:
			str[k] = t

			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				num[k] = f
			}
		case bool:
			if t {
				num[k] = 1
			} else {
				num[k] = 0
			}
		}
	}

	return num, str
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}

	if v > maxV {
		return maxV
	}

	return v
}
