package ffmpeg

import (
	"math"
	"runtime"
	"strings"

	"github.com/ZacxDev/scene-assembler/internal/config"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type CodecSettings struct {
	VideoCodec      string
	AudioCodec      string
	DefaultCRF      int
	DefaultPreset   string
	AudioBitrate    string
	ContainerFormat string
	FileExtension   string
	EncoderPresets  map[string]ffmpeg.KwArgs
}

var codecPresets = map[string]CodecSettings{
	"webm": {
		VideoCodec:      "libvpx-vp9",
		AudioCodec:      "libopus",
		DefaultCRF:      31,
		AudioBitrate:    "128k",
		ContainerFormat: "webm",
		FileExtension:   ".webm",
		EncoderPresets: map[string]ffmpeg.KwArgs{
			"balanced": {
				"b:v":          "0",
				"deadline":     "good",
				"cpu-used":     2,
				"row-mt":       1,
				"tile-columns": 2,
			},
		},
	},
	"mp4": {
		VideoCodec:      "libx264",
		AudioCodec:      "aac",
		DefaultCRF:      20,
		DefaultPreset:   "medium",
		AudioBitrate:    "192k",
		ContainerFormat: "mp4",
		FileExtension:   ".mp4",
		EncoderPresets: map[string]ffmpeg.KwArgs{
			"balanced": {
				"profile:v": "high",
				"movflags":  "+faststart",
			},
		},
	},
}

func GetCodecSettings(outputFormat string) CodecSettings {
	if settings, ok := codecPresets[outputFormat]; ok {
		return settings
	}
	// Default to MP4 if format not specified or invalid
	return codecPresets["mp4"]
}

// OutputKwargs returns the encoder options for the final output file.
// Fields set on enc win over the codec preset.
func OutputKwargs(enc config.Encoding, frameRate uint32) ffmpeg.KwArgs {
	preset := GetCodecSettings(enc.Format)

	kwargs := ffmpeg.KwArgs{}
	for k, v := range preset.EncoderPresets["balanced"] {
		kwargs[k] = v
	}

	videoCodec := enc.VideoCodec
	if videoCodec == "" {
		videoCodec = preset.VideoCodec
	}
	audioCodec := enc.AudioCodec
	if audioCodec == "" {
		audioCodec = preset.AudioCodec
	}
	crf := enc.CRF
	if crf == 0 {
		crf = preset.DefaultCRF
	}
	audioBitrate := enc.AudioBitrate
	if audioBitrate == "" {
		audioBitrate = preset.AudioBitrate
	}

	kwargs["f"] = preset.ContainerFormat
	kwargs["c:v"] = videoCodec
	kwargs["c:a"] = audioCodec
	kwargs["crf"] = crf
	kwargs["b:a"] = audioBitrate
	kwargs["pix_fmt"] = "yuv420p"
	kwargs["r"] = int(frameRate)
	kwargs["threads"] = GetOptimalThreadCount()

	if enc.Preset != "" {
		kwargs["preset"] = enc.Preset
	} else if preset.DefaultPreset != "" {
		kwargs["preset"] = preset.DefaultPreset
	}

	return kwargs
}

func GetOptimalThreadCount() int {
	cpuCount := runtime.NumCPU()
	// Use 75% of available cores to prevent overload
	return int(math.Max(1, float64(cpuCount)*0.75))
}

// EnsureExtension swaps any known video extension on filename for extension.
func EnsureExtension(filename, extension string) string {
	extensions := []string{".mp4", ".webm", ".mkv", ".avi", ".mov"}
	for _, ext := range extensions {
		filename = strings.TrimSuffix(filename, ext)
	}
	return filename + extension
}
