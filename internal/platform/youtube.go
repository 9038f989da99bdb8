package platform

import "github.com/ZacxDev/scene-assembler/pkg/types"

type YouTube struct{}

type YouTubeShorts struct{}

func init() {
	Register(&YouTube{})
	Register(&YouTubeShorts{})
}

func (p *YouTube) GetName() types.ProcessingPlatform {
	return types.ProcessingPlatformYouTube
}

func (p *YouTube) GetResolution() (width, height int) {
	return 1920, 1080
}

func (p *YouTube) GetFrameRate() uint32 {
	return 30
}

func (p *YouTube) GetMaxDuration() int {
	return 0
}

func (p *YouTube) GetVideoCodec() string {
	return "libx264"
}

func (p *YouTube) GetAudioCodec() string {
	return "aac"
}

func (p *YouTube) GetAudioBitrate() string {
	return "192k"
}

func (p *YouTube) GetOutputFormat() string {
	return "mp4"
}

func (p *YouTubeShorts) GetName() types.ProcessingPlatform {
	return types.ProcessingPlatformYouTubeShorts
}

func (p *YouTubeShorts) GetResolution() (width, height int) {
	return 1080, 1920
}

func (p *YouTubeShorts) GetFrameRate() uint32 {
	return 30
}

func (p *YouTubeShorts) GetMaxDuration() int {
	return 180
}

func (p *YouTubeShorts) GetVideoCodec() string {
	return "libx264"
}

func (p *YouTubeShorts) GetAudioCodec() string {
	return "aac"
}

func (p *YouTubeShorts) GetAudioBitrate() string {
	return "192k"
}

func (p *YouTubeShorts) GetOutputFormat() string {
	return "mp4"
}
