package audio

// SoundProvider is what a backend pulls mixed samples and debug channel
// state from; the APU is the only implementation, but keeping this as an
// interface lets backends (and test harnesses) swap in a silent stub.
type SoundProvider interface {
	// GetSamples fills and returns up to count interleaved stereo samples.
	GetSamples(count int) []int16

	// ToggleChannel mutes/unmutes one of the four channels (0-3), for
	// debugging individual voices.
	ToggleChannel(channel int)

	// SoloChannel mutes every channel except the given one.
	SoloChannel(channel int)

	// GetChannelStatus reports whether each of the four channels is
	// currently producing audible output.
	GetChannelStatus() (ch1, ch2, ch3, ch4 bool)
}

var _ SoundProvider = (*APU)(nil)
