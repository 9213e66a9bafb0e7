package proc

import (
	"bytes"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"
)

// waitDelay bounds how long Output waits for pipes held open by children
// of the process once it has exited.
var waitDelay = 2 * time.Second

type Process struct {
	*exec.Cmd
}

func New(program string, args []string) *Process {
	p := &Process{}
	p.Cmd = exec.Command(program, args...)
	p.Stdin = Reader{p, os.Stdin}
	p.Stdout = Writer{p, os.Stdout}
	p.Stderr = Writer{p, os.Stderr}
	return p
}

// Output runs the process to completion and returns what it wrote. A non
// zero exit status is not an error here; callers inspect ProcessState.
func (p *Process) Output() (stdout, stderr []byte, err error) {
	var outBuf, errBuf bytes.Buffer
	p.Stdin = nil
	p.Stdout = Writer{p, &outBuf}
	p.Stderr = Writer{p, &errBuf}
	p.WaitDelay = waitDelay

	if err = p.Start(); err != nil {
		return nil, nil, errors.Wrapf(err, "start %s", p.Path)
	}
	activeProcess.Add(p)
	defer activeProcess.Remove(p)

	err = p.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) || errors.Is(err, exec.ErrWaitDelay) {
		err = nil
	}
	return outBuf.Bytes(), errBuf.Bytes(), errors.Wrapf(err, "wait %s", p.Path)
}
