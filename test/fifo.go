//go:build !windows

package test

import (
	"io"
	"log"
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// Fifo uses unix named pipes or fifos to emulate a UART type channel
// the A side manages the channel, creates the fifos, cleans up, etc. The
// B side only opens the fifos for read/write. Fifo implements the io.ReadWriteCloser interface.
// Closing the B side closes its file handles but leaves the fifos in place.
//
// A Controllino simulator runs on the A side and the host client opens the
// B side (port name "serialfifo").
type Fifo struct {
	fread  io.ReadCloser
	fwrite io.WriteCloser
	a2b    string
	b2a    string
}

func fifoNames(name string) (a2b, b2a string) {
	return name + "a2b", name + "b2a"
}

// open both ends RDWR, otherwise open blocks until the peer shows up
func (f *Fifo) open(readPath, writePath string) error {
	var err error

	f.fread, err = os.OpenFile(readPath, os.O_RDWR, 0600)
	if err != nil {
		return errors.Wrap(err, "error opening read file")
	}

	f.fwrite, err = os.OpenFile(writePath, os.O_RDWR, 0600)
	if err != nil {
		f.fread.Close()
		return errors.Wrap(err, "error opening write file")
	}

	return nil
}

// NewFifoA creates the A side interface. This must be called first to create the fifo files.
func NewFifoA(name string) (*Fifo, error) {
	ret := &Fifo{}
	ret.a2b, ret.b2a = fifoNames(name)

	for _, p := range []string{ret.a2b, ret.b2a} {
		os.Remove(p)
		if err := syscall.Mknod(p, syscall.S_IFIFO|0666, 0); err != nil {
			return nil, errors.Wrapf(err, "mknod %v failed", p)
		}
	}

	if err := ret.open(ret.b2a, ret.a2b); err != nil {
		return nil, err
	}

	return ret, nil
}

// NewFifoB creates the B side interface. This must be called after NewFifoA
func NewFifoB(name string) (*Fifo, error) {
	ret := &Fifo{}
	a2b, b2a := fifoNames(name)

	if err := ret.open(a2b, b2a); err != nil {
		return nil, err
	}

	return ret, nil
}

func (f *Fifo) Read(b []byte) (int, error) {
	return f.fread.Read(b)
}

func (f *Fifo) Write(b []byte) (int, error) {
	return f.fwrite.Write(b)
}

// Close file handles, the A side also deletes the fifos
func (f *Fifo) Close() error {
	if err := f.fwrite.Close(); err != nil {
		log.Println("Error closing write file: ", err)
	}

	if err := f.fread.Close(); err != nil {
		log.Println("Error closing read file: ", err)
	}

	if f.a2b != "" {
		os.Remove(f.a2b)
	}

	if f.b2a != "" {
		os.Remove(f.b2a)
	}

	return nil
}
