package param

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// Mention syntax: <#id> for channels, <@id> or <@!id> for users. The id is
// an unsigned 64-bit integer; anything wider is a format error, not a
// crash.
var (
	channelMentionRe = regexp.MustCompile(`^<#([0-9]+)>$`)
	userMentionRe    = regexp.MustCompile(`^<@!?([0-9]+)>$`)
)

func parseMentionID(re *regexp.Regexp, tag, raw string) (uint64, error) {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return 0, &FormatError{Tag: tag, Raw: raw}
	}

	// ParseUint rejects ids overflowing 64 bits; that is a format error
	// like any other.
	id, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, &FormatError{Tag: tag, Raw: raw}
	}
	return id, nil
}

func convertChannelMention(ctx context.Context, raw string, lookup Lookup) (any, error) {
	const tag = "channel_mention"

	id, err := parseMentionID(channelMentionRe, tag, raw)
	if err != nil {
		return nil, err
	}

	if lookup == nil {
		return nil, fmt.Errorf("%s: no lookup capability supplied", tag)
	}

	ch, err := lookup.ChannelByID(ctx, id)
	if err != nil {
		return nil, &ValueError{Tag: tag, Raw: raw, Err: err}
	}
	if ch == nil {
		return nil, &ValueError{Tag: tag, Raw: raw}
	}
	return ch, nil
}

func convertUserMention(ctx context.Context, raw string, lookup Lookup) (any, error) {
	const tag = "user_mention"

	id, err := parseMentionID(userMentionRe, tag, raw)
	if err != nil {
		return nil, err
	}

	if lookup == nil {
		return nil, fmt.Errorf("%s: no lookup capability supplied", tag)
	}

	u, err := lookup.UserByID(ctx, id)
	if err != nil {
		return nil, &ValueError{Tag: tag, Raw: raw, Err: err}
	}
	if u == nil {
		return nil, &ValueError{Tag: tag, Raw: raw}
	}
	return u, nil
}
