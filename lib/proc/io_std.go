package proc

import "io"

// Reader and Writer tie a stream to the process using it.
type Reader struct {
	p *Process
	io.Reader
}

func (r Reader) Read(p []byte) (int, error) {
	return r.Reader.Read(p)
}

type Writer struct {
	p *Process
	io.Writer
}

func (w Writer) Write(p []byte) (int, error) {
	return w.Writer.Write(p)
}

func (w Writer) Process() *Process {
	return w.p
}
