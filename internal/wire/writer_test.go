package wire

import "testing"

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter(0)
	w.WriteByte(0x42)
	w.WriteBool(true)
	w.WriteUint16(0x1234)
	w.WriteInt32(-7)
	w.WriteUint64(0x0102030405060708)
	w.WriteFloat32(3.5)
	w.WriteString("hello")
	w.WriteBytes([]byte{1, 2, 3})

	r := NewReader(w.Bytes())

	b, err := r.ReadByte()
	if err != nil || b != 0x42 {
		t.Fatalf("ReadByte: got %v, %v", b, err)
	}
	boolVal, err := r.ReadBool()
	if err != nil || !boolVal {
		t.Fatalf("ReadBool: got %v, %v", boolVal, err)
	}
	u16, err := r.ReadUint16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadUint16: got %v, %v", u16, err)
	}
	i32, err := r.ReadInt32()
	if err != nil || i32 != -7 {
		t.Fatalf("ReadInt32: got %v, %v", i32, err)
	}
	u64, err := r.ReadUint64()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("ReadUint64: got %v, %v", u64, err)
	}
	f32, err := r.ReadFloat32()
	if err != nil || f32 != 3.5 {
		t.Fatalf("ReadFloat32: got %v, %v", f32, err)
	}
	s, err := r.ReadString()
	if err != nil || s != "hello" {
		t.Fatalf("ReadString: got %q, %v", s, err)
	}
	bs, err := r.ReadBytes()
	if err != nil || len(bs) != 3 || bs[0] != 1 {
		t.Fatalf("ReadBytes: got %v, %v", bs, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", r.Remaining())
	}
}

func TestReaderTruncatedData(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.ReadUint32(); err == nil {
		t.Fatal("expected error reading uint32 from 1 byte")
	}
}
