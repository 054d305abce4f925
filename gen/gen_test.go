package gen_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snapcorpus/snapcorpus/arch"
	"github.com/snapcorpus/snapcorpus/arch/amd64"
	"github.com/snapcorpus/snapcorpus/gen"
	"github.com/snapcorpus/snapcorpus/internal/layout"
	"github.com/snapcorpus/snapcorpus/loader"
	"github.com/snapcorpus/snapcorpus/snapshot"
)

func fixedBytes(n int, fill byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}

func entryRegisters(seed byte) snapshot.RegisterState {
	return snapshot.RegisterState{
		GReg:  fixedBytes(amd64.GRegSize, seed),
		FPReg: fixedBytes(amd64.FPRegSize, seed+1),
	}
}

func decodeHeader(t *testing.T, buf []byte) layout.Header {
	t.Helper()
	h, magic, err := layout.DecodeHeader(buf[:layout.HeaderSize])
	require.NoError(t, err)
	require.Equal(t, layout.Magic, magic)
	return h
}

func TestS1EmptyCorpus(t *testing.T) {
	buf, err := gen.Generate(arch.AMD64, nil, gen.DefaultOptions())
	require.NoError(t, err)

	h := decodeHeader(t, buf)
	require.EqualValues(t, len(buf), h.NumBytes)

	corpus := layout.DecodeCorpus(buf[layout.HeaderSize : layout.HeaderSize+layout.CorpusSize])
	require.EqualValues(t, 0, corpus.Snaps.Size)
	require.EqualValues(t, layout.HeaderSize+layout.CorpusSize, len(buf))
}

func TestS2PageAlignedRepeatingRunSkipsPageData(t *testing.T) {
	snap := snapshot.Snapshot{
		ID:           "trivial",
		Architecture: arch.AMD64,
		Registers:    entryRegisters(1),
		Mappings: []snapshot.MemoryMapping{{
			StartAddress: 0x1000,
			NumBytes:     0x1000,
			Perms:        snapshot.PermRead | snapshot.PermExecute,
			Bytes: []snapshot.MemoryBytes{{
				StartAddress: 0x1000,
				Data:         make([]byte, 4096), // all-zero, page-aligned, page-sized
			}},
		}},
		EndStates: []snapshot.EndState{{
			InstructionAddress: 0x1000,
			Registers:           entryRegisters(2),
		}},
	}

	counters := gen.Counters{}
	_, err := gen.Generate(arch.AMD64, []snapshot.Snapshot{snap}, gen.Options{CompressRepeatingBytes: true, Counters: counters})
	require.NoError(t, err)
	require.EqualValues(t, 0, counters[gen.PageDataBlockName])
	require.EqualValues(t, 0, counters[gen.ByteDataBlockName])
}

func TestS2PageAlignedWithoutCompressionUsesPageData(t *testing.T) {
	snap := snapshot.Snapshot{
		ID:           "trivial",
		Architecture: arch.AMD64,
		Registers:    entryRegisters(1),
		Mappings: []snapshot.MemoryMapping{{
			StartAddress: 0x1000,
			NumBytes:     0x1000,
			Perms:        snapshot.PermRead | snapshot.PermExecute,
			Bytes: []snapshot.MemoryBytes{{
				StartAddress: 0x1000,
				Data:         make([]byte, 4096),
			}},
		}},
		EndStates: []snapshot.EndState{{
			InstructionAddress: 0x1000,
			Registers:           entryRegisters(2),
		}},
	}

	counters := gen.Counters{}
	_, err := gen.Generate(arch.AMD64, []snapshot.Snapshot{snap}, gen.Options{CompressRepeatingBytes: false, Counters: counters})
	require.NoError(t, err)
	require.EqualValues(t, 4096, counters[gen.PageDataBlockName])
}

func TestS3DedupAcrossSnapshots(t *testing.T) {
	payload := []byte("repeated-but-not-page-sized-content")
	mapping := func() snapshot.MemoryMapping {
		return snapshot.MemoryMapping{
			StartAddress: 0x2000,
			NumBytes:     uint64(len(payload)),
			Perms:        snapshot.PermRead | snapshot.PermWrite,
			Bytes: []snapshot.MemoryBytes{{StartAddress: 0x2000, Data: payload}},
		}
	}
	snapA := snapshot.Snapshot{
		ID: "a", Architecture: arch.AMD64, Registers: entryRegisters(1),
		Mappings:  []snapshot.MemoryMapping{mapping()},
		EndStates: []snapshot.EndState{{InstructionAddress: 1, Registers: entryRegisters(2)}},
	}
	snapB := snapshot.Snapshot{
		ID: "b", Architecture: arch.AMD64, Registers: entryRegisters(3),
		Mappings:  []snapshot.MemoryMapping{mapping()},
		EndStates: []snapshot.EndState{{InstructionAddress: 2, Registers: entryRegisters(4)}},
	}

	counters := gen.Counters{}
	buf, err := gen.Generate(arch.AMD64, []snapshot.Snapshot{snapA, snapB}, gen.Options{CompressRepeatingBytes: true, Counters: counters})
	require.NoError(t, err)
	require.EqualValues(t, len(payload), counters[gen.ByteDataBlockName])

	corpus := layout.DecodeCorpus(buf[layout.HeaderSize : layout.HeaderSize+layout.CorpusSize])
	require.EqualValues(t, 2, corpus.Snaps.Size)
}

func TestS4RegisterDedup(t *testing.T) {
	regs := entryRegisters(9)
	mk := func(id string) snapshot.Snapshot {
		return snapshot.Snapshot{
			ID: id, Architecture: arch.AMD64, Registers: regs,
			Mappings:  nil,
			EndStates: []snapshot.EndState{{InstructionAddress: 1, Registers: regs}},
		}
	}

	counters := gen.Counters{}
	_, err := gen.Generate(arch.AMD64, []snapshot.Snapshot{mk("a"), mk("b")}, gen.Options{Counters: counters})
	require.NoError(t, err)
	require.EqualValues(t, amd64.GRegSize, counters[gen.GRegsBlockName])
	require.EqualValues(t, amd64.FPRegSize, counters[gen.FPRegsBlockName])
}

func TestDeterminism(t *testing.T) {
	snap := snapshot.Snapshot{
		ID: "det", Architecture: arch.AMD64, Registers: entryRegisters(5),
		Mappings: []snapshot.MemoryMapping{{
			StartAddress: 0x4000, NumBytes: 8, Perms: snapshot.PermRead,
			Bytes: []snapshot.MemoryBytes{{StartAddress: 0x4000, Data: []byte("abcdefgh")}},
		}},
		EndStates: []snapshot.EndState{{InstructionAddress: 0x4000, Registers: entryRegisters(6)}},
	}

	buf1, err := gen.Generate(arch.AMD64, []snapshot.Snapshot{snap}, gen.DefaultOptions())
	require.NoError(t, err)
	buf2, err := gen.Generate(arch.AMD64, []snapshot.Snapshot{snap}, gen.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, buf1, buf2)
}

func TestUndefinedArchitectureRejected(t *testing.T) {
	_, err := gen.Generate(arch.Undefined, nil, gen.DefaultOptions())
	require.ErrorIs(t, err, arch.ErrUndefinedArch)
}

func TestWrongArchitectureIsFatal(t *testing.T) {
	snap := snapshot.Snapshot{ID: "x", Architecture: arch.ID(99)}
	defer func() {
		r := recover()
		require.NotNil(t, r)
	}()
	_, _ = gen.Generate(arch.AMD64, []snapshot.Snapshot{snap}, gen.DefaultOptions())
	t.Fatal("expected panic")
}

func TestSnapshotIDIsSanitized(t *testing.T) {
	// 0x93/0x94 are Windows-1252 curly quotes with no ASCII equivalent;
	// a producer emitting legacy bytes for the id must still end up
	// embedded as valid UTF-8 in the image rather than raw Windows-1252
	// bytes.
	snap := snapshot.Snapshot{
		ID: string([]byte{0x93, 'x', 0x94}), Architecture: arch.AMD64,
		Registers: entryRegisters(1),
		EndStates: []snapshot.EndState{{InstructionAddress: 1, Registers: entryRegisters(2)}},
	}

	buf, err := gen.Generate(arch.AMD64, []snapshot.Snapshot{snap}, gen.DefaultOptions())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "corpus.bin")
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	v, err := loader.Open(path, arch.AMD64)
	require.NoError(t, err)
	defer v.Close()
	v.Relocate(0)

	s, err := v.Snap(0)
	require.NoError(t, err)
	id, err := v.String(s.IDPtr)
	require.NoError(t, err)
	require.Equal(t, "“x”", id)
}

func TestEmptySnapshotIDIsFatal(t *testing.T) {
	snap := snapshot.Snapshot{
		ID: "", Architecture: arch.AMD64, Registers: entryRegisters(1),
		EndStates: []snapshot.EndState{{InstructionAddress: 1, Registers: entryRegisters(2)}},
	}
	defer func() {
		r := recover()
		require.NotNil(t, r)
	}()
	_, _ = gen.Generate(arch.AMD64, []snapshot.Snapshot{snap}, gen.DefaultOptions())
	t.Fatal("expected panic")
}

func TestEmptyEntryRegistersIsFatal(t *testing.T) {
	snap := snapshot.Snapshot{
		ID: "x", Architecture: arch.AMD64, Registers: snapshot.RegisterState{},
		EndStates: []snapshot.EndState{{InstructionAddress: 1, Registers: entryRegisters(1)}},
	}
	defer func() {
		r := recover()
		require.NotNil(t, r)
	}()
	_, _ = gen.Generate(arch.AMD64, []snapshot.Snapshot{snap}, gen.DefaultOptions())
	t.Fatal("expected panic")
}

func TestEmptyEndStateRegistersZeroFill(t *testing.T) {
	snap := snapshot.Snapshot{
		ID: "x", Architecture: arch.AMD64, Registers: entryRegisters(1),
		EndStates: []snapshot.EndState{{InstructionAddress: 1, Registers: snapshot.RegisterState{}}},
	}
	_, err := gen.Generate(arch.AMD64, []snapshot.Snapshot{snap}, gen.DefaultOptions())
	require.NoError(t, err)
}

func TestWrongEndStateCountIsFatal(t *testing.T) {
	snap := snapshot.Snapshot{ID: "x", Architecture: arch.AMD64, EndStates: nil}
	defer func() {
		r := recover()
		require.NotNil(t, r)
	}()
	_, _ = gen.Generate(arch.AMD64, []snapshot.Snapshot{snap}, gen.DefaultOptions())
	t.Fatal("expected panic")
}
