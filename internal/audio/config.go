package audio

import (
	"github.com/gen2brain/malgo"
)

const (
	// DefaultSampleRate is 16kHz, the native sample rate of most speech models.
	DefaultSampleRate = 16_000
	// DefaultChannels is mono.
	DefaultChannels = 1
	// BitDepth is the sample size of S16LE capture.
	BitDepth = 16
)

type DeviceConfig struct {
	Format          malgo.FormatType
	CaptureChannels int
	SampleRate      int
}

// DefaultDeviceConfig captures mono S16LE at 16kHz.
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Format:          malgo.FormatS16,
		CaptureChannels: DefaultChannels,
		SampleRate:      DefaultSampleRate,
	}
}
