package artifact

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/Sadana31/movieAPI/internal/similarity"
)

var matrixMagic = [8]byte{'M', 'R', 'S', 'I', 'M', '0', '0', '1'}

// matrixHeaderSize is magic + build id + uint32 N.
const matrixHeaderSize = 8 + 16 + 4

// WriteMatrix encodes m with its build id in the similarity.bin layout.
func WriteMatrix(w io.Writer, buildID uuid.UUID, m *similarity.Matrix) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(matrixMagic[:]); err != nil {
		return err
	}
	if _, err := bw.Write(buildID[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(m.N())); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, m.Data()); err != nil {
		return fmt.Errorf("write matrix data: %w", err)
	}
	return bw.Flush()
}

// ReadMatrix decodes a similarity.bin stream. size is the total stream length
// when known, or -1; it guards against allocating for a truncated file.
func ReadMatrix(r io.Reader, size int64) (uuid.UUID, *similarity.Matrix, error) {
	br := bufio.NewReader(r)

	var header [matrixHeaderSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: matrix header: %v", ErrArtifactMismatch, err)
	}
	if !bytes.Equal(header[:8], matrixMagic[:]) {
		return uuid.Nil, nil, fmt.Errorf("%w: bad matrix magic %q", ErrArtifactMismatch, header[:8])
	}
	buildID, err := uuid.FromBytes(header[8:24])
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: matrix build id: %v", ErrArtifactMismatch, err)
	}
	n := int(binary.LittleEndian.Uint32(header[24:]))

	if size >= 0 {
		want := int64(matrixHeaderSize) + 4*int64(n)*int64(n)
		if size != want {
			return uuid.Nil, nil, fmt.Errorf("%w: matrix file is %d bytes, want %d for n=%d",
				ErrArtifactMismatch, size, want, n)
		}
	}

	data := make([]float32, n*n)
	if err := binary.Read(br, binary.LittleEndian, data); err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: matrix data: %v", ErrArtifactMismatch, err)
	}
	m, err := similarity.FromData(n, data)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: %v", ErrArtifactMismatch, err)
	}
	return buildID, m, nil
}
