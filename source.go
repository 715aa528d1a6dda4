package tracker

import (
	"fmt"
	"strings"
)

// MarketSource identifies one independent pricing venue.
type MarketSource string

const (
	Steam     MarketSource = "steam"
	Buff163   MarketSource = "buff163"
	Skinport  MarketSource = "skinport"
	Youpin898 MarketSource = "youpin"
	CSFloat   MarketSource = "csfloat"
)

// ParseMarketSource parses a market source from its lowercase tag.
func ParseMarketSource(s string) (MarketSource, error) {
	switch MarketSource(strings.ToLower(s)) {
	case Steam:
		return Steam, nil
	case Buff163:
		return Buff163, nil
	case Skinport:
		return Skinport, nil
	case Youpin898:
		return Youpin898, nil
	case CSFloat:
		return CSFloat, nil
	}
	return "", fmt.Errorf("unknown market source %q", s)
}

func (s MarketSource) String() string { return string(s) }

// Title returns the display name of the source, e.g. "Steam" or "CSFloat".
func (s MarketSource) Title() string {
	if s == CSFloat {
		return "CSFloat"
	}
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}
