package rtc

import (
	"context"
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/rondo-dev/rondo/internal/peer"
)

// mediaStream bundles the local tracks handed to a peer connection.
type mediaStream struct {
	tracks []webrtc.TrackLocal
}

func (m *mediaStream) Close() error {
	// Static sample tracks hold no OS resources; detaching happens when
	// the peer connection closes.
	return nil
}

// AcquireLocalMedia creates the local audio/video track pair. There is no
// capture pipeline in the terminal client — the tracks are sample-fed
// placeholders that negotiate real audio/video m-lines, so the data
// channel rides a full media session.
func (p *Provider) AcquireLocalMedia(ctx context.Context) (peer.MediaStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	audio, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", "rondo")
	if err != nil {
		return nil, fmt.Errorf("failed to create audio track: %w", err)
	}

	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", "rondo")
	if err != nil {
		return nil, fmt.Errorf("failed to create video track: %w", err)
	}

	return &mediaStream{tracks: []webrtc.TrackLocal{audio, video}}, nil
}
