package linkchecktest

import "bytes"

// Echo is a Transport which returns everything written to it.
// Reads are limited to ChunkSize bytes when it is positive, and Corrupt, if
// set, is applied to each written message before it is queued.
type Echo struct {
	ChunkSize int
	Corrupt   func([]byte) []byte
	// ShortBy makes each Write report that many fewer bytes than it was given.
	ShortBy int

	buf    bytes.Buffer
	Writes int
}

func (e *Echo) Write(p []byte) (int, error) {
	e.Writes++
	msg := append([]byte(nil), p...)
	if e.Corrupt != nil {
		msg = e.Corrupt(msg)
	}
	e.buf.Write(msg)
	n := len(p) - e.ShortBy
	if n < 0 {
		n = 0
	}
	return n, nil
}

func (e *Echo) Read(p []byte) (int, error) {
	if e.ChunkSize > 0 && len(p) > e.ChunkSize {
		p = p[:e.ChunkSize]
	}
	if e.buf.Len() == 0 {
		return 0, nil
	}
	return e.buf.Read(p)
}

// Buffered returns the number of echoed bytes not yet read.
func (e *Echo) Buffered() int {
	return e.buf.Len()
}
