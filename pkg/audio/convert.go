package audio

// Downmixed returns a mono copy of the buffer. Stereo input is downmixed by
// averaging L+R per frame with int32 arithmetic to prevent overflow; mono
// input is returned unchanged (zero allocation).
func (b Buffer) Downmixed() Buffer {
	if b.Channels <= 1 {
		return b
	}
	frames := len(b.Data) / (2 * b.Channels)
	out := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		var sum int32
		for ch := 0; ch < b.Channels; ch++ {
			off := (i*b.Channels + ch) * 2
			sum += int32(int16(b.Data[off]) | int16(b.Data[off+1])<<8)
		}
		avg := sum / int32(b.Channels)
		if avg > 32767 {
			avg = 32767
		} else if avg < -32768 {
			avg = -32768
		}
		out[i*2] = byte(avg)
		out[i*2+1] = byte(avg >> 8)
	}
	return Buffer{Data: out, SampleRate: b.SampleRate, Channels: 1}
}

// Resampled returns a copy of a mono buffer resampled to dstRate using linear
// interpolation. If the rate already matches (or either rate is invalid), the
// buffer is returned unchanged. Non-mono buffers are returned unchanged;
// downmix first.
func (b Buffer) Resampled(dstRate int) Buffer {
	if b.Channels != 1 || b.SampleRate <= 0 || dstRate <= 0 || b.SampleRate == dstRate {
		return b
	}
	srcSamples := len(b.Data) / 2
	if srcSamples < 2 {
		return b
	}
	dstSamples := int(int64(srcSamples) * int64(dstRate) / int64(b.SampleRate))
	if dstSamples == 0 {
		return Buffer{SampleRate: dstRate, Channels: 1}
	}

	out := make([]byte, dstSamples*2)
	ratio := float64(b.SampleRate) / float64(dstRate)

	for i := 0; i < dstSamples; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		s0 := int16(b.Data[srcIdx*2]) | int16(b.Data[srcIdx*2+1])<<8
		s1 := s0
		if srcIdx+1 < srcSamples {
			s1 = int16(b.Data[(srcIdx+1)*2]) | int16(b.Data[(srcIdx+1)*2+1])<<8
		}

		v := int16(float64(s0)*(1-frac) + float64(s1)*frac)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return Buffer{Data: out, SampleRate: dstRate, Channels: 1}
}
