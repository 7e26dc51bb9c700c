// Package nbdwire implements the server side of the NBD (Network
// Block Device) fixed newstyle handshake and a minimal read-only
// command loop, just enough surface for blkcachectl serve to expose a
// blockcache.Cache without depending on nbdkit or libnbd.
package nbdwire

// Handshake magic numbers, per the NBD protocol's fixed newstyle
// negotiation.
const (
	nbdMagic       uint64 = 0x4e42444d41474943 // "NBDMAGIC"
	ihaveoptMagic  uint64 = 0x49484156454f5054 // "IHAVEOPT"
	optionReplyAck uint64 = 0x3e889045565a9

	flagFixedNewstyle uint16 = 1 << 0
	flagNoZeroes      uint16 = 1 << 1

	flagHasFlags     uint16 = 1 << 0
	flagReadOnly     uint16 = 1 << 1
	flagSendFlush    uint16 = 1 << 2
	flagSendTrim     uint16 = 1 << 5
	flagSendFastZero uint16 = 1 << 10
)

// Client option types (handshake phase).
const (
	optExportName uint32 = 1
	optAbort      uint32 = 2
	optGo         uint32 = 7
)

// Reply types for NBD_OPT_GO/NBD_OPT_EXPORT_NAME.
const (
	replyAck uint32 = 1
)

// Transmission-phase request magic and command opcodes.
const (
	requestMagic uint32 = 0x25609513
	replyMagic   uint32 = 0x67446698

	cmdRead = 0
	cmdDisc = 2
)

// Request error codes.
const (
	errIO = 5 // EIO
)
