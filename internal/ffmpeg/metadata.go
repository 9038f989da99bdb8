package ffmpeg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoMetadata contains metadata about a video file
type VideoMetadata struct {
	Duration   float64
	Width      int
	Height     int
	Codec      string
	FrameRate  float64
	HasAudio   bool
	AudioCodec string
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		Duration   string `json:"duration"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

// GetVideoMetadata retrieves full stream metadata about a segment. The
// assembly path only needs Engine.Probe; this is for reporting.
func GetVideoMetadata(inputPath string, timeout time.Duration) (*VideoMetadata, error) {
	probe, err := ffmpeg.ProbeWithTimeout(inputPath, timeout, ffmpeg.KwArgs{})
	if err != nil {
		return nil, fmt.Errorf("error probing video: %v", err)
	}
	return ParseMetadata([]byte(probe))
}

// ParseMetadata converts ffprobe JSON output into VideoMetadata.
func ParseMetadata(data []byte) (*VideoMetadata, error) {
	var raw probeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WithStack(err)
	}

	md := &VideoMetadata{}
	foundVideo := false
	for _, s := range raw.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			md.Width = s.Width
			md.Height = s.Height
			md.Codec = s.CodecName
			md.FrameRate = parseFrameRate(s.RFrameRate)
			md.Duration = parseSeconds(s.Duration)
		case "audio":
			if !md.HasAudio {
				md.HasAudio = true
				md.AudioCodec = s.CodecName
			}
		}
	}

	if !foundVideo {
		return nil, fmt.Errorf("no video stream found")
	}

	// Container duration covers the narration track as well
	if d := parseSeconds(raw.Format.Duration); d > 0 {
		md.Duration = d
	}
	if md.Duration == 0 {
		return nil, fmt.Errorf("could not determine video duration")
	}
	return md, nil
}

func parseSeconds(s string) float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return d
}

func parseFrameRate(rate string) float64 {
	nums := strings.Split(rate, "/")
	if len(nums) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(nums[0], 64)
	den, err2 := strconv.ParseFloat(nums[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
