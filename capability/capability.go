// Package capability defines the fixed vocabulary of model capability flags
// and the context modifiers that scope empirical observations.
package capability

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Capability is a named boolean-valued feature flag for a model.
type Capability string

// The full capability vocabulary. Lookups against any other value fail with
// UnknownCapabilityError before any store is consulted.
const (
	StructuredOutput Capability = "structured_output"
	Vision           Capability = "vision"
	FunctionCalling  Capability = "function_calling"
	Streaming        Capability = "streaming"
	JSONMode         Capability = "json_mode"
	Reasoning        Capability = "reasoning"
	ImageGeneration  Capability = "image_generation"
	SpeechGeneration Capability = "speech_generation"
	Transcription    Capability = "transcription"
	Translation      Capability = "translation"
	Citations        Capability = "citations"
	PredictedOutputs Capability = "predicted_outputs"
	Distillation     Capability = "distillation"
	FineTuning       Capability = "fine_tuning"
	Batch            Capability = "batch"
	Realtime         Capability = "realtime"
	Caching          Capability = "caching"
	Moderation       Capability = "moderation"
)

var all = []Capability{
	StructuredOutput,
	Vision,
	FunctionCalling,
	Streaming,
	JSONMode,
	Reasoning,
	ImageGeneration,
	SpeechGeneration,
	Transcription,
	Translation,
	Citations,
	PredictedOutputs,
	Distillation,
	FineTuning,
	Batch,
	Realtime,
	Caching,
	Moderation,
}

var valid = func() map[Capability]bool {
	m := make(map[Capability]bool, len(all))
	for _, c := range all {
		m[c] = true
	}
	return m
}()

// All returns the full vocabulary in a stable order.
func All() []Capability {
	out := make([]Capability, len(all))
	copy(out, all)
	return out
}

// Valid reports whether c is part of the known vocabulary.
func (c Capability) Valid() bool {
	return valid[c]
}

func (c Capability) String() string {
	return string(c)
}

// Parse converts a string into a Capability, failing with
// UnknownCapabilityError for anything outside the vocabulary.
func Parse(s string) (Capability, error) {
	c := Capability(s)
	if !c.Valid() {
		return "", &UnknownCapabilityError{Capability: s}
	}
	return c, nil
}

// UnknownCapabilityError indicates a capability argument outside the fixed
// vocabulary. It is always surfaced to the caller, never recovered.
type UnknownCapabilityError struct {
	Capability string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown capability: %q", e.Capability)
}

// Context holds optional key/value modifiers that scope an empirical cache
// entry more narrowly than the bare (model, capability) pair. A nil or empty
// context is equivalent to no context at all.
type Context map[string]any

// Key builds the canonical cache key for a (model, capability, context)
// triple: model + ":" + capability, plus ":" and the comma-joined "k=v"
// context pairs sorted ascending by key when the context is non-empty. The
// result is identical regardless of the order context pairs were supplied in.
func Key(model string, c Capability, ctx Context) string {
	key := model + ":" + string(c)
	if suffix := ctx.canonical(); suffix != "" {
		key += ":" + suffix
	}
	return key
}

func (ctx Context) canonical() string {
	if len(ctx) == 0 {
		return ""
	}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+formatValue(ctx[k]))
	}
	return strings.Join(pairs, ",")
}

// formatValue is the fixed stringification contract for context values.
// It is total and deterministic so that semantically equal contexts always
// produce identical cache keys.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
