package audio

import (
	"strconv"

	"github.com/julianstephens/murmur/internal/constants"
)

// Quality is the encoder quality level. It maps to a target bitrate.
type Quality int

const (
	QualityLow Quality = iota
	QualityMedium
	QualityHigh
)

func (q Quality) BitrateK() int {
	switch q {
	case QualityLow:
		return 64
	case QualityMedium:
		return 128
	default:
		return constants.AudioBitrateK
	}
}

// Settings are the recording parameters. They are fixed per installation and
// never negotiated with the input device.
type Settings struct {
	Codec      string
	Container  string
	SampleRate int
	Channels   int
	Quality    Quality
}

func DefaultSettings() Settings {
	return Settings{
		Codec:      constants.AudioCodec,
		Container:  constants.AudioExtension[1:],
		SampleRate: constants.AudioSampleRate,
		Channels:   constants.AudioChannels,
		Quality:    QualityHigh,
	}
}

// Extension is the file extension for recordings, including the dot.
func (s Settings) Extension() string {
	return "." + s.Container
}

// encodeArgs are the ffmpeg output options for s.
func (s Settings) encodeArgs() []string {
	return []string{
		"-c:a", s.Codec,
		"-b:a", strconv.Itoa(s.Quality.BitrateK()) + "k",
		"-ar", strconv.Itoa(s.SampleRate),
		"-ac", strconv.Itoa(s.Channels),
	}
}
