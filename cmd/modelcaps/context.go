package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/modelcaps/capability"
)

// parseContext converts repeated --context key=value flags into a capability
// context. Values are typed: true/false become booleans, null becomes nil,
// numbers become integers or floats, everything else stays a string.
func parseContext(pairs []string) (capability.Context, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	ctx := capability.Context{}
	for _, pair := range pairs {
		key, raw, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid context pair %q (want key=value)", pair)
		}
		ctx[key] = parseContextValue(raw)
	}
	return ctx, nil
}

func parseContextValue(raw string) any {
	switch raw {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
