package constants

import "time"

const (
	// Recording parameters. These are fixed, not negotiated with the device.
	AudioCodec      = "aac"
	AudioExtension  = ".m4a"
	AudioSampleRate = 44100
	AudioChannels   = 2
	AudioBitrateK   = 192 // "high" encoder quality

	AudioDirName = "voicenotes"

	DefaultFFmpegPath = "ffmpeg"
	DefaultFFplayPath = "ffplay"

	// RecorderStartWindow is how long a freshly started recorder must stay up
	// before the recording counts as open.
	RecorderStartWindow = 300 * time.Millisecond
	// RecorderStopGrace bounds how long Stop waits for the encoder to flush.
	RecorderStopGrace = 5 * time.Second
)
