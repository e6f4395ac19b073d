/*
Package controllino is a host side client for devices running the 8tronix
Controllino protocol: CR LF delimited JSON frames over a serial (USB) link.

Every request carries a job id. A [Session] runs two goroutines, one that
writes queued requests to the [device.Device] and one that polls the device
for replies and matches them to the outstanding request by job id. Results
are delivered through a [Future], so callers can block on or poll the
outcome. Signal logging ([LogSignal]) is a streaming request: the device
sends many replies for one job until a reply with done set to true.

Errors that end one of the goroutines are not attached to any request.
They are handed to an [ErrorSink], by default a queue the caller drains
with [Session.ProcessErrors].

See [Controllino] for the named method API:

	port, err := device.Open(device.Config{Port: "/dev/ttyACM0"})
	c := controllino.NewControllino(port, controllino.Options{})
	ready, _ := c.Open()
	ready.Wait(5 * time.Second)

	level, _ := c.GetSignal("A0")
	if level.Wait(time.Second) {
		v, err := level.Result()
		...
	}
*/
package controllino
