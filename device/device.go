// Package device provides the byte stream the Controllino client talks
// over. A Device is polled: the client asks how many bytes are waiting and
// only then reads them, so reads never block.
package device

// Device is a polled, full duplex byte stream such as a serial port
type Device interface {
	// Available returns the number of bytes that can be read without blocking
	Available() (int, error)
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}
