package platform

import "github.com/ZacxDev/scene-assembler/pkg/types"

type Twitter struct{}

func init() {
	Register(&Twitter{})
}

func (p *Twitter) GetName() types.ProcessingPlatform {
	return types.ProcessingPlatformXTwitter
}

func (p *Twitter) GetResolution() (width, height int) {
	return 1280, 720
}

func (p *Twitter) GetFrameRate() uint32 {
	return 30
}

func (p *Twitter) GetMaxDuration() int {
	return 140
}

func (p *Twitter) GetVideoCodec() string {
	return "libx264"
}

func (p *Twitter) GetAudioCodec() string {
	return "aac"
}

func (p *Twitter) GetAudioBitrate() string {
	return "128k"
}

func (p *Twitter) GetOutputFormat() string {
	return "mp4"
}
