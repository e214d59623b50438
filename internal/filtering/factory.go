package filtering

import (
	"fmt"

	"github.com/stacklok/asset-librarian/internal/config"
)

// New creates a filter from its configuration. A nil configuration yields a
// nil filter, which the processor treats as always matching.
func New(cfg *config.FilterConfig) (Filter, error) {
	if cfg == nil {
		return nil, nil
	}

	switch cfg.GetKind() {
	case config.FilterKindText:
		f, err := newTextFilterFromConfig(cfg.Text)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.FilterKindEvent:
		return newEventFilterFromConfig(cfg.Event), nil
	case config.FilterKindSoundBankType:
		if cfg.SoundBankType.Kind == config.SoundBankKindAuto {
			return NewAutoDefinedSoundBankFilter(), nil
		}
		return NewUserDefinedSoundBankFilter(), nil
	default:
		return nil, fmt.Errorf("filter configuration has no filter kind")
	}
}

func newTextFilterFromConfig(cfg *config.TextFilterConfig) (*TextFilter, error) {
	target, err := parseTextTarget(cfg.Target)
	if err != nil {
		return nil, err
	}
	return &TextFilter{
		Pattern:          config.PatternOrDefault(cfg.Pattern),
		Target:           target,
		CaseSensitive:    cfg.CaseSensitive,
		UseRegex:         cfg.Regex,
		Exclusion:        cfg.Exclusion,
		FilterSoundBanks: config.BoolOrDefault(cfg.SoundBanks, true),
		FilterMedia:      config.BoolOrDefault(cfg.Media, true),
	}, nil
}

func newEventFilterFromConfig(cfg *config.EventFilterConfig) *EventFilter {
	return &EventFilter{
		Pattern:             config.PatternOrDefault(cfg.Pattern),
		CaseSensitive:       cfg.CaseSensitive,
		UseRegex:            cfg.Regex,
		SingleReferenceOnly: cfg.SingleReferenceOnly,
		FilterSoundBanks:    config.BoolOrDefault(cfg.SoundBanks, true),
		FilterMedia:         config.BoolOrDefault(cfg.Media, true),
	}
}

func parseTextTarget(s string) (TextTarget, error) {
	switch s {
	case "", config.TextTargetName:
		return TextTargetName, nil
	case config.TextTargetSystemPath:
		return TextTargetSystemPath, nil
	case config.TextTargetPathInWwise:
		return TextTargetPathInWwise, nil
	default:
		return TextTargetName, fmt.Errorf("unknown text filter target %q", s)
	}
}
