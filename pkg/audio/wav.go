package audio

import (
	"encoding/binary"
	"io"
)

// WAVWriter writes 16-bit PCM audio in WAV format
type WAVWriter struct {
	writer     io.Writer
	sampleRate int
	channels   int
}

// NewWAVWriter creates a WAV writer
func NewWAVWriter(w io.Writer, sampleRate, channels int) *WAVWriter {
	return &WAVWriter{
		writer:     w,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// WriteHeader writes the RIFF/fmt/data headers for dataSize bytes of PCM
func (w *WAVWriter) WriteHeader(dataSize int) error {
	// RIFF header
	w.writer.Write([]byte("RIFF"))
	binary.Write(w.writer, binary.LittleEndian, uint32(dataSize+36))
	w.writer.Write([]byte("WAVE"))

	// fmt chunk
	w.writer.Write([]byte("fmt "))
	binary.Write(w.writer, binary.LittleEndian, uint32(16))           // Chunk size
	binary.Write(w.writer, binary.LittleEndian, uint16(1))            // PCM format
	binary.Write(w.writer, binary.LittleEndian, uint16(w.channels))   // Channels
	binary.Write(w.writer, binary.LittleEndian, uint32(w.sampleRate)) // Sample rate
	byteRate := w.sampleRate * w.channels * 2
	binary.Write(w.writer, binary.LittleEndian, uint32(byteRate))   // Byte rate
	blockAlign := w.channels * 2
	binary.Write(w.writer, binary.LittleEndian, uint16(blockAlign)) // Block align
	binary.Write(w.writer, binary.LittleEndian, uint16(16))         // Bits per sample

	// data chunk header
	w.writer.Write([]byte("data"))
	binary.Write(w.writer, binary.LittleEndian, uint32(dataSize))

	return nil
}

// WriteSamples writes float samples as clamped 16-bit PCM
func (w *WAVWriter) WriteSamples(samples []float32) error {
	for _, s := range samples {
		if err := binary.Write(w.writer, binary.LittleEndian, sampleToInt16(s)); err != nil {
			return err
		}
	}
	return nil
}

// ExportWAV bounces durationSeconds of the renderer's output to a
// stereo WAV file, pulling the same block size the realtime path uses.
func ExportWAV(r BlockRenderer, writer io.Writer, sampleRate, blockFrames int, durationSeconds float64) error {
	totalFrames := int(durationSeconds * float64(sampleRate))
	dataSize := totalFrames * 2 * 2 // 16-bit stereo

	wavWriter := NewWAVWriter(writer, sampleRate, 2)
	if err := wavWriter.WriteHeader(dataSize); err != nil {
		return err
	}

	buffer := make([]float32, blockFrames*2)
	for written := 0; written < totalFrames; {
		remaining := totalFrames - written
		block := buffer
		if remaining < blockFrames {
			block = buffer[:remaining*2]
		}
		r.RenderBlock(block)
		if err := wavWriter.WriteSamples(block); err != nil {
			return err
		}
		written += len(block) / 2
	}

	return nil
}
