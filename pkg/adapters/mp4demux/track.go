package mp4demux

import (
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/clipsampler/pkg/adapters/codecdetect"
	"github.com/user/clipsampler/pkg/ports"
)

// av1TemporalDelimiter is an OBU header of type OBU_TEMPORAL_DELIMITER with an empty payload.
var av1TemporalDelimiter = []byte{0x12, 0x00}

type track struct {
	info    ports.TrackInfo
	samples []ports.Sample

	// offsets locate samples of progressive files; data holds samples of fragmented files.
	offsets []uint64
	data    [][]byte

	// config is prepended to keyframes: SPS/PPS in Annex B or AV1 configuration OBUs.
	config []byte
}

func newTrack(index int, trak *mp4.TrakBox) (*track, error) {
	if trak.Tkhd == nil || trak.Mdia == nil || trak.Mdia.Mdhd == nil {
		return nil, fmt.Errorf("incomplete track header")
	}

	codec, name := codecdetect.FromTrack(trak)
	t := &track{
		info: ports.TrackInfo{
			Index:     index,
			TrackID:   trak.Tkhd.TrackID,
			MediaType: codecdetect.MediaType(trak),
			Codec:     codec,
			CodecName: name,
			Timescale: trak.Mdia.Mdhd.Timescale,
			Duration:  trak.Mdia.Mdhd.Duration,
		},
	}

	if vse, ok := codecdetect.SampleEntry(trak).(*mp4.VisualSampleEntryBox); ok {
		t.info.Width = int(vse.Width)
		t.info.Height = int(vse.Height)
		switch {
		case vse.AvcC != nil:
			t.config = parameterSets(vse.AvcC)
		case vse.Av1C != nil:
			t.config = vse.Av1C.ConfigOBUs
		}
	}
	return t, nil
}

// parameterSets returns the SPS and PPS NAL units of avcC in Annex B format.
func parameterSets(avcC *mp4.AvcCBox) []byte {
	var spsPPS []byte
	for _, sps := range avcC.SPSnalus {
		spsPPS = append(spsPPS, 0, 0, 0, 1)
		spsPPS = append(spsPPS, sps...)
	}
	for _, pps := range avcC.PPSnalus {
		spsPPS = append(spsPPS, 0, 0, 0, 1)
		spsPPS = append(spsPPS, pps...)
	}
	return spsPPS
}

// readSampleTable indexes the samples of a progressive track from its stbl box.
func (t *track) readSampleTable(trak *mp4.TrakBox) error {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return fmt.Errorf("no sample table found")
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil || stbl.Stsc == nil || stbl.Stts == nil {
		return fmt.Errorf("missing stsz, stsc or stts box")
	}
	if stbl.Stco == nil && stbl.Co64 == nil {
		return fmt.Errorf("no stco or co64 box")
	}

	// Build sync sample set (keyframes). Without stss every sample is a sync sample.
	syncSamples := make(map[uint32]bool)
	if stbl.Stss != nil {
		for _, sampleNr := range stbl.Stss.SampleNumber {
			syncSamples[sampleNr] = true
		}
	}

	sampleCount := stbl.Stsz.SampleNumber
	t.samples = make([]ports.Sample, 0, sampleCount)
	t.offsets = make([]uint64, 0, sampleCount)

	prevChunk := 0
	var offset uint64
	for sampleNr := uint32(1); sampleNr <= sampleCount; sampleNr++ {
		chunkNr, _, err := stbl.Stsc.ChunkNrFromSampleNr(int(sampleNr))
		if err != nil {
			return fmt.Errorf("get chunk nr of sample %d: %w", sampleNr, err)
		}
		if chunkNr != prevChunk {
			if offset, err = chunkOffset(stbl, chunkNr); err != nil {
				return err
			}
			prevChunk = chunkNr
		}
		size := stbl.Stsz.GetSampleSize(int(sampleNr))

		decodeTime, dur := stbl.Stts.GetDecodeTime(sampleNr)
		pts := int64(decodeTime)
		if stbl.Ctts != nil {
			pts += int64(stbl.Ctts.GetCompositionTimeOffset(sampleNr))
		}

		t.samples = append(t.samples, ports.Sample{
			DecodeTime:       decodeTime,
			PresentationTime: pts,
			Duration:         dur,
			Size:             size,
			Keyframe:         stbl.Stss == nil || syncSamples[sampleNr],
		})
		t.offsets = append(t.offsets, offset)
		offset += uint64(size)
	}
	return nil
}

func chunkOffset(stbl *mp4.StblBox, chunkNr int) (uint64, error) {
	if stbl.Stco != nil {
		offset, err := stbl.Stco.GetOffset(chunkNr)
		if err != nil {
			return 0, fmt.Errorf("get chunk offset: %w", err)
		}
		return offset, nil
	}
	if chunkNr < 1 || chunkNr > len(stbl.Co64.ChunkOffset) {
		return 0, fmt.Errorf("chunk nr %d out of range", chunkNr)
	}
	return stbl.Co64.ChunkOffset[chunkNr-1], nil
}

// readFragments collects the samples of a fragmented track. Sample data stays in memory.
func (t *track) readFragments(mp4File *mp4.File) error {
	var trex *mp4.TrexBox
	if mp4File.Init.Moov.Mvex != nil {
		for _, tr := range mp4File.Init.Moov.Mvex.Trexs {
			if tr.TrackID == t.info.TrackID {
				trex = tr
				break
			}
		}
	}

	t.data = [][]byte{}
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != t.info.TrackID {
					continue
				}

				samples, err := frag.GetFullSamples(trex)
				if err != nil {
					return fmt.Errorf("get samples: %w", err)
				}
				for _, sample := range samples {
					t.samples = append(t.samples, ports.Sample{
						DecodeTime:       sample.DecodeTime,
						PresentationTime: int64(sample.DecodeTime) + int64(sample.CompositionTimeOffset),
						Duration:         sample.Dur,
						Size:             sample.Size,
						Keyframe:         mp4.IsSyncSampleFlags(sample.Flags),
					})
					t.data = append(t.data, sample.Data)
				}
			}
		}
	}
	return nil
}

// packetize converts a stored sample into a self-contained decoder packet.
func (t *track) packetize(data []byte, keyframe bool) []byte {
	switch t.info.Codec {
	case ports.CodecH264:
		annexB := avccToAnnexB(data)
		if !keyframe {
			return annexB
		}
		frameData := make([]byte, len(t.config)+len(annexB))
		copy(frameData, t.config)
		copy(frameData[len(t.config):], annexB)
		return frameData
	case ports.CodecAV1:
		frameData := append([]byte{}, av1TemporalDelimiter...)
		if keyframe {
			frameData = append(frameData, t.config...)
		}
		return append(frameData, data...)
	default:
		return data
	}
}

// avccToAnnexB converts AVCC format (length-prefixed NALUs) to Annex B format (start code prefixed)
func avccToAnnexB(data []byte) []byte {
	var result []byte
	offset := 0

	for offset+4 <= len(data) {
		naluLen := int(data[offset])<<24 | int(data[offset+1])<<16 |
			int(data[offset+2])<<8 | int(data[offset+3])
		offset += 4

		if offset+naluLen > len(data) {
			break
		}

		result = append(result, 0, 0, 0, 1)
		result = append(result, data[offset:offset+naluLen]...)
		offset += naluLen
	}

	return result
}
