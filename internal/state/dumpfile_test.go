package state

import (
	"encoding/binary"
	"math/rand"
	"testing"
)

func buildDump(t *testing.T, d DumpFile, m *MachineState) []byte {
	t.Helper()
	buf := make([]byte, d.Size())
	off := 3 * d.XLenBytes // tmpregstore, irrelevant content
	putXLen(d, buf, off, m.LastPC)
	off += d.XLenBytes
	putXLen(d, buf, off, m.Exceptions)
	off += d.XLenBytes
	putXLen(d, buf, off, m.Mstatus)
	off += d.XLenBytes

	if d.FLenBytes > 0 {
		putXLen(d, buf, off, uint64(m.F.FCSR))
		off += d.XLenBytes
		for i := 0; i < 32; i++ {
			copy(buf[off:], m.F.F[i])
			off += d.FLenBytes
		}
		off = alignUp(off, d.XLenBytes)
	}
	if d.VLenBytes > 0 {
		for _, v := range []uint64{m.V.VType, m.V.VL, m.V.VLenb, m.V.VStart, m.V.VXRM, m.V.VXSAT, m.V.VCSR} {
			putXLen(d, buf, off, v)
			off += d.XLenBytes
		}
		for i := 0; i < 32; i++ {
			copy(buf[off:], m.V.V[i])
			off += d.VLenBytes
		}
	}
	return buf
}

func putXLen(d DumpFile, buf []byte, off int, v uint64) {
	if d.XLenBytes == 4 {
		binary.LittleEndian.PutUint32(buf[off:], uint32(v))
		return
	}
	binary.LittleEndian.PutUint64(buf[off:], v)
}

func TestExtractRoundTrip(t *testing.T) {
	d := DumpFile{XLenBytes: 8, FLenBytes: 8, VLenBytes: 64}
	m := New(64, 512)
	m.Init(InitRand, rand.New(rand.NewSource(3)))
	m.LastPC = 0x80000100
	m.Exceptions = 2

	buf := buildDump(t, d, m)
	xmem := []byte("xmem-content")
	dmem := []byte("dmem-content")

	got, err := d.Extract(buf, xmem, dmem)
	if err != nil {
		t.Fatal(err)
	}
	if got.LastPC != m.LastPC || got.Exceptions != m.Exceptions || got.Mstatus != m.Mstatus {
		t.Fatalf("estate mismatch: %+v vs %+v", got, m)
	}
	if got.F.FCSR != m.F.FCSR {
		t.Fatalf("fcsr mismatch: %#x vs %#x", got.F.FCSR, m.F.FCSR)
	}
	for i := range m.F.F {
		if string(got.F.F[i]) != string(m.F.F[i]) {
			t.Fatalf("f%d mismatch", i)
		}
	}
	if got.V.VType != m.V.VType || got.V.VL != m.V.VL || got.V.VCSR != m.V.VCSR {
		t.Fatalf("vstate mismatch: %+v vs %+v", got.V, m.V)
	}
	for i := range m.V.V {
		if string(got.V.V[i]) != string(m.V.V[i]) {
			t.Fatalf("v%d mismatch", i)
		}
	}
	if got.XMemHash == "" || got.DMemHash == "" {
		t.Fatal("expected non-empty memory hashes")
	}
}

func TestExtractTooSmallBuffer(t *testing.T) {
	d := DumpFile{XLenBytes: 8}
	_, err := d.Extract(make([]byte, 4), nil, nil)
	if err == nil {
		t.Fatal("expected error for undersized buffer")
	}
}
