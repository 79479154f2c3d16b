package smartdecoder

import (
	"errors"
	"testing"

	"github.com/user/clipsampler/pkg/mocks"
	"github.com/user/clipsampler/pkg/ports"
)

func newTestFactory(available bool) (*Factory, *[]ports.Codec) {
	var created []ports.Codec
	f := &Factory{
		available: func() bool { return available },
		ffmpeg: func(codec ports.Codec) (ports.PacketDecoder, error) {
			created = append(created, codec)
			return mocks.NewPacketDecoder(16, 16), nil
		},
	}
	return f, &created
}

func TestSelect(t *testing.T) {
	f, _ := newTestFactory(true)

	tests := []struct {
		codec   ports.Codec
		wantErr error
	}{
		{ports.CodecH264, nil},
		{ports.CodecAV1, nil},
		{ports.CodecHEVC, ErrUnsupportedCodec},
		{ports.CodecUnknown, ErrUnsupportedCodec},
	}

	for _, tt := range tests {
		t.Run(string(tt.codec), func(t *testing.T) {
			info, err := f.Select(tt.codec)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.Codec != tt.codec || info.Backend != BackendFFmpeg {
				t.Errorf("unexpected info: %+v", info)
			}
		})
	}
}

func TestSelectWithoutFFmpeg(t *testing.T) {
	f, created := newTestFactory(false)

	if _, err := f.Select(ports.CodecH264); !errors.Is(err, ErrNoDecoderAvailable) {
		t.Errorf("expected ErrNoDecoderAvailable, got %v", err)
	}
	if _, err := f.NewDecoder(ports.TrackInfo{Codec: ports.CodecAV1}); !errors.Is(err, ErrNoDecoderAvailable) {
		t.Errorf("expected ErrNoDecoderAvailable, got %v", err)
	}
	if len(*created) != 0 {
		t.Errorf("expected no decoders created, got %v", *created)
	}
}

func TestNewDecoder(t *testing.T) {
	f, created := newTestFactory(true)

	dec, err := f.NewDecoder(ports.TrackInfo{Codec: ports.CodecAV1})
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	if dec == nil {
		t.Fatal("decoder is nil")
	}
	defer dec.Close()

	if len(*created) != 1 || (*created)[0] != ports.CodecAV1 {
		t.Errorf("expected one AV1 decoder, got %v", *created)
	}

	if _, err := f.NewDecoder(ports.TrackInfo{Codec: ports.CodecHEVC}); !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec, got %v", err)
	}
}

func TestAvailabilityChecks(t *testing.T) {
	t.Logf("H.264 available: %v", IsH264Available())
	t.Logf("AV1 available: %v", IsAV1Available())
}
