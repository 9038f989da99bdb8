package platform

import "github.com/ZacxDev/scene-assembler/pkg/types"

type Instagram struct{}

// InstagramSquare is the 1:1 feed format.
type InstagramSquare struct{}

func init() {
	Register(&Instagram{})
	Register(&InstagramSquare{})
}

func (p *Instagram) GetName() types.ProcessingPlatform {
	return types.ProcessingPlatformInstagramReel
}

func (p *Instagram) GetResolution() (width, height int) {
	return 1080, 1920
}

func (p *Instagram) GetFrameRate() uint32 {
	return 30
}

func (p *Instagram) GetMaxDuration() int {
	return 90
}

func (p *Instagram) GetVideoCodec() string {
	return "libx264"
}

func (p *Instagram) GetAudioCodec() string {
	return "aac"
}

func (p *Instagram) GetAudioBitrate() string {
	return "128k"
}

func (p *Instagram) GetOutputFormat() string {
	return "mp4"
}

func (p *InstagramSquare) GetName() types.ProcessingPlatform {
	return types.ProcessingPlatformInstagramSquare
}

func (p *InstagramSquare) GetResolution() (width, height int) {
	return 1080, 1080
}

func (p *InstagramSquare) GetFrameRate() uint32 {
	return 30
}

func (p *InstagramSquare) GetMaxDuration() int {
	return 60
}

func (p *InstagramSquare) GetVideoCodec() string {
	return "libx264"
}

func (p *InstagramSquare) GetAudioCodec() string {
	return "aac"
}

func (p *InstagramSquare) GetAudioBitrate() string {
	return "128k"
}

func (p *InstagramSquare) GetOutputFormat() string {
	return "mp4"
}
