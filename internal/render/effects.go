package render

import (
	"fmt"
	"math"
	"strconv"
)

// Effect names a scene animation style. Each effect maps to an ffmpeg
// filter graph parameterized only by the clip duration and the output
// profile.
type Effect string

const (
	EffectKenBurns         Effect = "ken_burns"
	EffectSlidePan         Effect = "slide_pan"
	EffectRotateZoom       Effect = "rotate_zoom"
	EffectCinematicOverlay Effect = "cinematic_overlay"
)

// FallbackEffect is the effect retried when the first render attempt
// fails. The slow zoom has the simplest filter graph and the widest
// ffmpeg compatibility.
const FallbackEffect = EffectKenBurns

// Effects returns the full effect set in a stable order.
func Effects() []Effect {
	return []Effect{EffectKenBurns, EffectSlidePan, EffectRotateZoom, EffectCinematicOverlay}
}

// Profile carries the output video parameters shared by every effect.
type Profile struct {
	Width       int
	Height      int
	FPS         int
	FadeSeconds float64
}

// fadeWindow returns the fade-in start and the guarded fade-out start.
// Clips shorter than two fades would otherwise produce a negative
// fade-out timestamp, so the fade-out never starts before the fade-in.
func (p Profile) fadeWindow(duration float64) (fadeIn float64, fadeOut float64) {
	fadeIn = 0
	fadeOut = math.Max(duration-p.FadeSeconds, fadeIn)
	return fadeIn, fadeOut
}

func (p Profile) size() string {
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Args builds the full ffmpeg argument list rendering one still image
// plus one audio track into an animated scene clip.
func (e Effect) Args(image string, audio string, output string, duration float64, p Profile) []string {
	fadeIn, fadeOut := p.fadeWindow(duration)
	fade := fmt.Sprintf("fade=t=in:st=%s:d=%s,fade=t=out:st=%s:d=%s[v]",
		formatSeconds(fadeIn), formatSeconds(p.FadeSeconds),
		formatSeconds(fadeOut), formatSeconds(p.FadeSeconds))

	var filter string
	switch e {
	case EffectSlidePan:
		totalFrames := int(duration * float64(p.FPS))
		if totalFrames < 1 {
			totalFrames = 1
		}
		filter = fmt.Sprintf(
			"[0:v]fps=%d,scale=%d:%d,zoompan=z=1:x='on*(iw-%d)/%d':y=0:s=%s,%s",
			p.FPS, p.Width+680, p.Height+380, p.Width, totalFrames, p.size(), fade)
	case EffectRotateZoom:
		filter = fmt.Sprintf(
			"[0:v]fps=%d,scale=2400:2400,rotate=0.01*sin(2*PI*on/150):c=black@0,crop=%d:%d,%s",
			p.FPS, p.Width, p.Height, fade)
	case EffectCinematicOverlay:
		filter = fmt.Sprintf(
			"[0:v]fps=%d,scale=2400:2400,zoompan=z='min(1+on*0.0005,1.07)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=%s,"+
				"drawbox=x=0:y=0:w=iw:h=ih:color=black@0.25:t=fill,%s",
			p.FPS, p.size(), fade)
	default:
		// ken_burns, and the safety net for unknown names.
		filter = fmt.Sprintf(
			"[0:v]fps=%d,scale=2400:2400,zoompan=z='min(1+on*0.0006,1.08)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=%s,%s",
			p.FPS, p.size(), fade)
	}

	return []string{
		"-y",
		"-loop", "1", "-t", formatSeconds(duration), "-i", image,
		"-i", audio,
		"-filter_complex", filter,
		"-map", "[v]", "-map", "1:a",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-c:a", "aac", "-shortest",
		output,
	}
}
