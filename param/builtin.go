package param

import (
	"context"
	"math/big"
	"regexp"
)

// builtins is the default converter set. string and text are identity
// passthroughs; number and integer parse arbitrary-precision integers;
// decimal parses arbitrary-precision decimals. The mention converters live
// in mention.go.
var builtins = map[string]Converter{
	"string":          convertString,
	"text":            convertString,
	"number":          convertNumber,
	"integer":         convertNumber,
	"decimal":         convertDecimal,
	"channel_mention": convertChannelMention,
	"user_mention":    convertUserMention,
}

func convertString(ctx context.Context, raw string, lookup Lookup) (any, error) {
	return raw, nil
}

var numberRe = regexp.MustCompile(`^[+-]?[0-9]+$`)

func convertNumber(ctx context.Context, raw string, lookup Lookup) (any, error) {
	if !numberRe.MatchString(raw) {
		return nil, &FormatError{Tag: "number", Raw: raw}
	}

	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, &FormatError{Tag: "number", Raw: raw}
	}
	return n, nil
}

// decimalRe accepts an optional sign and fractional part. big.Rat would
// also accept p/q and exponent notation, which the decimal tag does not.
var decimalRe = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

func convertDecimal(ctx context.Context, raw string, lookup Lookup) (any, error) {
	if !decimalRe.MatchString(raw) {
		return nil, &FormatError{Tag: "decimal", Raw: raw}
	}

	d, ok := new(big.Rat).SetString(raw)
	if !ok {
		return nil, &FormatError{Tag: "decimal", Raw: raw}
	}
	return d, nil
}
