package nbdwire

import "bytes"

// duplex lets a test script one side of a conversation: reads come
// from in, writes go to out, standing in for a real net.Conn.
type duplex struct {
	in  *bytes.Buffer
	out *bytes.Buffer
}

func newDuplex(clientBytes []byte) *duplex {
	return &duplex{in: bytes.NewBuffer(clientBytes), out: &bytes.Buffer{}}
}

func (d *duplex) Read(p []byte) (int, error)  { return d.in.Read(p) }
func (d *duplex) Write(p []byte) (int, error) { return d.out.Write(p) }
