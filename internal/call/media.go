package call

import (
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// MediaSource is the media-device collaborator: it supplies the local
// audio/video tracks attached during negotiation and owns their
// enabled state.
type MediaSource interface {
	Tracks() []webrtc.TrackLocal
	SetAudioEnabled(enabled bool)
	SetVideoEnabled(enabled bool)
	Close() error
}

// AcquireFunc acquires local media. Failure is a user-facing, retryable
// error; it never tears down room membership.
type AcquireFunc func() (MediaSource, error)

// opusSilence is a minimal silent Opus frame.
var opusSilence = []byte{0xf8, 0xff, 0xfe}

// AcquireSynthetic returns a source backed by static-sample tracks: an
// Opus track fed silence and a VP8 track that negotiates but carries no
// frames. It lets a headless peer establish a real session without
// capture hardware.
func AcquireSynthetic() (MediaSource, error) {
	audio, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", "videocall")
	if err != nil {
		return nil, WrapError("acquire media", ErrMediaUnavailable, err.Error())
	}
	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", "videocall")
	if err != nil {
		return nil, WrapError("acquire media", ErrMediaUnavailable, err.Error())
	}

	s := &syntheticSource{
		audio:   audio,
		video:   video,
		audioOn: true,
		videoOn: true,
		done:    make(chan struct{}),
	}
	go s.feedSilence()
	return s, nil
}

type syntheticSource struct {
	audio *webrtc.TrackLocalStaticSample
	video *webrtc.TrackLocalStaticSample

	mu      sync.Mutex
	audioOn bool
	videoOn bool
	closed  bool
	done    chan struct{}
}

func (s *syntheticSource) Tracks() []webrtc.TrackLocal {
	return []webrtc.TrackLocal{s.audio, s.video}
}

func (s *syntheticSource) SetAudioEnabled(enabled bool) {
	s.mu.Lock()
	s.audioOn = enabled
	s.mu.Unlock()
}

func (s *syntheticSource) SetVideoEnabled(enabled bool) {
	s.mu.Lock()
	s.videoOn = enabled
	s.mu.Unlock()
}

func (s *syntheticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	return nil
}

func (s *syntheticSource) feedSilence() {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			on := s.audioOn
			s.mu.Unlock()
			if !on {
				continue
			}
			s.audio.WriteSample(media.Sample{Data: opusSilence, Duration: 20 * time.Millisecond})
		}
	}
}
