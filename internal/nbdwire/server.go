package nbdwire

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"

	"github.com/marmos91/blkcache/internal/logger"
	"github.com/marmos91/blkcache/pkg/plugin"
)

// request is an NBD transmission-phase command header.
type request struct {
	flags  uint16
	typ    uint16
	handle uint64
	offset uint64
	length uint32
}

func readRequest(r io.Reader) (request, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return request{}, err
	}
	if magic != requestMagic {
		return request{}, errors.New("nbdwire: bad request magic")
	}
	var req request
	if err := binary.Read(r, binary.BigEndian, &req.flags); err != nil {
		return request{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &req.typ); err != nil {
		return request{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &req.handle); err != nil {
		return request{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &req.offset); err != nil {
		return request{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &req.length); err != nil {
		return request{}, err
	}
	return req, nil
}

func writeSimpleReply(w io.Writer, handle uint64, errno uint32, data []byte) error {
	if err := binary.Write(w, binary.BigEndian, replyMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, errno); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, handle); err != nil {
		return err
	}
	if len(data) > 0 {
		_, err := w.Write(data)
		return err
	}
	return nil
}

// Serve accepts connections on ln, one at a time, each against a
// fresh plugin handle opened through adapter. This is a standalone
// alternative to running under nbdkit (pkg/nbdkit) — both ultimately
// drive the same Adapter.
func Serve(ctx context.Context, ln net.Listener, adapter *plugin.Adapter) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
		if err := serveConn(ctx, conn, adapter); err != nil {
			logger.WarnCtx(ctx, "nbd connection ended", logger.Err(err))
		}
		stop()
	}
}

func serveConn(ctx context.Context, conn net.Conn, adapter *plugin.Adapter) error {
	defer conn.Close()

	h, err := adapter.Open(true)
	if err != nil {
		return err
	}
	defer adapter.Close(ctx, h)

	size, err := adapter.GetSize(h)
	if err != nil {
		return err
	}

	if err := serverHandshake(conn, size); err != nil {
		return err
	}

	for {
		req, err := readRequest(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch req.typ {
		case cmdDisc:
			return nil
		case cmdRead:
			data, err := adapter.Pread(ctx, h, int(req.length), int64(req.offset))
			if err != nil {
				if werr := writeSimpleReply(conn, req.handle, errIO, nil); werr != nil {
					return werr
				}
				continue
			}
			if err := writeSimpleReply(conn, req.handle, 0, data); err != nil {
				return err
			}
		default:
			// every other command (write, flush, trim, ...) is
			// unsupported by this read-only engine.
			if err := writeSimpleReply(conn, req.handle, errIO, nil); err != nil {
				return err
			}
		}
	}
}
