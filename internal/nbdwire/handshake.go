package nbdwire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// serverHandshake runs the fixed newstyle negotiation up through
// NBD_OPT_EXPORT_NAME or NBD_OPT_GO, sending exportSize once the
// client selects an export and returning nil when transmission can
// begin. Every export this server knows about
// shares the same name and size — there is exactly one device per
// serve invocation.
func serverHandshake(rw io.ReadWriter, exportSize int64) error {
	if err := binary.Write(rw, binary.BigEndian, nbdMagic); err != nil {
		return err
	}
	if err := binary.Write(rw, binary.BigEndian, ihaveoptMagic); err != nil {
		return err
	}
	if err := binary.Write(rw, binary.BigEndian, flagFixedNewstyle|flagNoZeroes); err != nil {
		return err
	}

	var clientFlags uint32
	if err := binary.Read(rw, binary.BigEndian, &clientFlags); err != nil {
		return fmt.Errorf("read client flags: %w", err)
	}

	for {
		var magic uint64
		if err := binary.Read(rw, binary.BigEndian, &magic); err != nil {
			return fmt.Errorf("read option magic: %w", err)
		}
		if magic != ihaveoptMagic {
			return fmt.Errorf("bad option magic %#x", magic)
		}

		var opt uint32
		var length uint32
		if err := binary.Read(rw, binary.BigEndian, &opt); err != nil {
			return err
		}
		if err := binary.Read(rw, binary.BigEndian, &length); err != nil {
			return err
		}
		payload := make([]byte, length)
		if length > 0 {
			if _, err := io.ReadFull(rw, payload); err != nil {
				return err
			}
		}

		switch opt {
		case optExportName, optGo:
			if err := sendExportInfo(rw, exportSize, opt); err != nil {
				return err
			}
			return nil
		case optAbort:
			return fmt.Errorf("client aborted handshake")
		default:
			if err := sendUnsupported(rw, opt); err != nil {
				return err
			}
		}
	}
}

func sendExportInfo(rw io.ReadWriter, exportSize int64, opt uint32) error {
	if opt == optExportName {
		// NBD_OPT_EXPORT_NAME's reply has no option-reply envelope:
		// just the export size and transmission flags (no-zeroes was
		// negotiated, so no trailing zero padding).
		if err := binary.Write(rw, binary.BigEndian, uint64(exportSize)); err != nil {
			return err
		}
		flags := flagHasFlags | flagReadOnly
		return binary.Write(rw, binary.BigEndian, flags)
	}

	// NBD_OPT_GO: one NBD_INFO_EXPORT reply, then ack.
	info := make([]byte, 2+8+2)
	binary.BigEndian.PutUint16(info[0:2], 0) // NBD_INFO_EXPORT
	binary.BigEndian.PutUint64(info[2:10], uint64(exportSize))
	binary.BigEndian.PutUint16(info[10:12], flagHasFlags|flagReadOnly)

	if err := writeOptionReply(rw, opt, 3 /* NBD_REP_INFO */, info); err != nil {
		return err
	}
	return writeOptionReply(rw, opt, replyAck, nil)
}

func sendUnsupported(rw io.ReadWriter, opt uint32) error {
	return writeOptionReply(rw, opt, 1<<31|1, nil) // NBD_REP_ERR_UNSUP
}

func writeOptionReply(w io.Writer, opt uint32, replyType uint32, data []byte) error {
	if err := binary.Write(w, binary.BigEndian, optionReplyAck); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, opt); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, replyType); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(data))); err != nil {
		return err
	}
	if len(data) > 0 {
		_, err := w.Write(data)
		return err
	}
	return nil
}
