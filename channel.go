package bcapture

import "github.com/cockroachdb/errors"

// ChannelState describes which output channel of a response is in use.
type ChannelState int

const (
	// ChannelUnopened means no body was written (yet).
	ChannelUnopened ChannelState = iota
	// ChannelText means the body is written as text in the response charset.
	ChannelText
	// ChannelBinary means the body is written as raw bytes.
	ChannelBinary
)

func (s ChannelState) String() string {
	switch s {
	case ChannelText:
		return "text"
	case ChannelBinary:
		return "binary"
	default:
		return "unopened"
	}
}

// channelGuard enforces that a response opens at most one channel, once.
type channelGuard struct {
	state ChannelState
}

// check fails if want can no longer be acquired, without changing the state.
func (g *channelGuard) check(want ChannelState) error {
	if g.state != ChannelUnopened {
		return errors.Wrapf(ErrChannelAlreadyOpen, "acquire %s channel: %s channel is open", want, g.state)
	}

	return nil
}

func (g *channelGuard) acquire(want ChannelState) error {
	if err := g.check(want); err != nil {
		return err
	}

	g.state = want

	return nil
}
