package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteFrame writes a big-endian u32 length prefix followed by the envelope
// body to w. Used on the reliable session channel only.
func WriteFrame(w io.Writer, e Envelope) error {
	body := EncodeEnvelope(e)
	if len(body) == 0 || len(body) > MaxFrameLen {
		return fmt.Errorf("wire: frame length %d outside (0, %d]", len(body), MaxFrameLen)
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("writing frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed envelope from r. A zero length or a
// length exceeding MaxFrameLen is reported as an error; the caller (session
// layer) must treat that as grounds to close the connection per spec.
func ReadFrame(r io.Reader) (Envelope, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Envelope{}, fmt.Errorf("reading frame header: %w", err)
	}

	n := binary.BigEndian.Uint32(header[:])
	if n == 0 || n > MaxFrameLen {
		return Envelope{}, fmt.Errorf("wire: frame length %d outside (0, %d]", n, MaxFrameLen)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return Envelope{}, fmt.Errorf("reading frame body: %w", err)
	}

	return DecodeEnvelope(body)
}

// EncodeDatagram serializes one envelope for the unreliable channel: no
// length prefix, one envelope per UDP payload.
func EncodeDatagram(e Envelope) []byte { return EncodeEnvelope(e) }

// DecodeDatagram parses one envelope received from the unreliable channel.
// Callers must drop the packet silently on error, per spec.
func DecodeDatagram(data []byte) (Envelope, error) { return DecodeEnvelope(data) }
